package db

import "testing"

func TestSummarizeSQL(t *testing.T) {
	cases := []struct{ in, op, table string }{
		{"SELECT * FROM `deployments` WHERE id = ?", "SELECT", "deployments"},
		{"insert into deployed_objects (object_key) values (?)", "INSERT", "deployed_objects"},
		{"UPDATE deployments SET status = ? WHERE id = ?", "UPDATE", "deployments"},
		{"DELETE FROM \"deployments\"\n WHERE id = 1", "DELETE", "deployments"},
		{"PRAGMA foreign_keys = ON", "PRAGMA", ""},
		{"   ", "", ""},
	}
	for _, c := range cases {
		op, table := summarizeSQL(c.in)
		if op != c.op || table != c.table {
			t.Fatalf("summarizeSQL(%q)=%q,%q want %q,%q", c.in, op, table, c.op, c.table)
		}
	}
}
