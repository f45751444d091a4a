package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clerk/internal/clients"
	"clerk/internal/faults"
	"clerk/internal/logging"
	"clerk/internal/testsupport"
)

func TestClientsAddListRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "clients", "add", "John", "Doe")
	if err != nil {
		t.Fatalf("clients add: %v", err)
	}
	requireContains(t, out, "Added John Doe → Doe_John")

	out, _, err = env.run(t, "clients", "add", "Marie Jane Smith", "ann lee")
	if err != nil {
		t.Fatalf("clients add several: %v", err)
	}
	requireContains(t, out, "Added Marie Jane Smith → Smith_Jane_Marie")
	requireContains(t, out, "Added Ann Lee → Lee_Ann")

	out, _, err = env.run(t, "clients", "list")
	if err != nil {
		t.Fatalf("clients list: %v", err)
	}
	requireContains(t, out, "Doe_John")
	requireContains(t, out, "Smith_Jane_Marie")

	out, _, err = env.run(t, "clients", "list", "--json")
	if err != nil {
		t.Fatalf("clients list --json: %v", err)
	}
	var views []clientView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	want := []string{"john doe", "marie jane smith", "ann lee"}
	if len(views) != len(want) {
		t.Fatalf("expected %d clients, got %+v", len(want), views)
	}
	for i, name := range want {
		if views[i].Name != name {
			t.Fatalf("client %d = %q, want %q (registry order)", i, views[i].Name, name)
		}
	}

	out, _, err = env.run(t, "clients", "remove", "John", "Doe")
	if err != nil {
		t.Fatalf("clients remove: %v", err)
	}
	requireContains(t, out, "Removed John Doe")

	reg, err := clients.LoadFile(env.cfg.Paths.ClientsFile, logging.NewNop())
	if err != nil {
		t.Fatalf("load clients: %v", err)
	}
	if reg.Len() != 2 || reg.Contains(clients.MustParse("john doe")) {
		t.Fatalf("unexpected registry after remove: %v", reg.Clients())
	}
}

func TestClientsAddDuplicate(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "clients", "add", "John Doe"); err != nil {
		t.Fatalf("clients add: %v", err)
	}

	_, _, err := env.run(t, "clients", "add", "JOHN", "DOE")
	if !errors.Is(err, clients.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	out, stderr, err := env.run(t, "clients", "add", "John Doe", "Ann Lee")
	if err != nil {
		t.Fatalf("partial add: %v", err)
	}
	requireContains(t, out, "Added Ann Lee")
	requireContains(t, stderr, "Skipped John Doe: already registered")
}

func TestClientsAddInvalidNameWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "clients", "add", "Cher")
	if !errors.Is(err, clients.ErrInvalidFormat) {
		t.Fatalf("expected invalid format, got %v", err)
	}
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	requireMissing(t, env.cfg.Paths.ClientsFile)
}

func TestClientsRemoveUnknown(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "clients", "add", "John Doe"); err != nil {
		t.Fatalf("clients add: %v", err)
	}

	_, _, err := env.run(t, "clients", "remove", "Jane", "Roe")
	if err == nil {
		t.Fatal("expected error removing an unknown client")
	}
	requireContains(t, err.Error(), "not registered: Jane Roe")

	_, _, err = env.run(t, "clients", "remove", "Prince")
	if !errors.Is(err, clients.ErrInvalidFormat) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}

func TestClientsMapping(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "clients", "mapping")
	if err != nil {
		t.Fatalf("clients mapping: %v", err)
	}
	requireContains(t, out, "No clients registered")

	if _, _, err := env.run(t, "clients", "add", "John Doe", "Marie Jane Smith"); err != nil {
		t.Fatalf("clients add: %v", err)
	}
	out, _, err = env.run(t, "clients", "mapping")
	if err != nil {
		t.Fatalf("clients mapping: %v", err)
	}
	requireContains(t, out, "John Doe → Doe_John\n")
	requireContains(t, out, "Marie Jane Smith → Smith_Jane_Marie\n")
}

func TestClientsImportCSV(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithClients("John Doe"))
	table := filepath.Join(env.baseDir, "clients.csv")
	content := "Name,Email\nJohn Doe,jd@example.com\nCher,c@example.com\nMarie Jane Smith,m@example.com\nAnn Lee,a@example.com\n"
	if err := os.WriteFile(table, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out, stderr, err := env.run(t, "clients", "import", table, "--skip-header")
	if err != nil {
		t.Fatalf("clients import: %v", err)
	}
	requireContains(t, out, "Added Marie Jane Smith → Smith_Jane_Marie")
	requireContains(t, out, "Added Ann Lee → Lee_Ann")
	requireContains(t, out, "Imported 2 clients (1 already registered, 1 invalid)")
	requireContains(t, stderr, `Skipped row 3: "Cher"`)
	requireNotContains(t, out, "Name")

	reg, err := clients.LoadFile(env.cfg.Paths.ClientsFile, logging.NewNop())
	if err != nil {
		t.Fatalf("load clients: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 clients, got %v", reg.Clients())
	}
}

func TestClientsImportRow(t *testing.T) {
	env := setupCLITestEnv(t)
	table := filepath.Join(env.baseDir, "names.tsv")
	if err := os.WriteFile(table, []byte("ignored\tignored too\nJohn Doe\tAnn Lee\n"), 0o644); err != nil {
		t.Fatalf("write tsv: %v", err)
	}

	out, _, err := env.run(t, "clients", "import", table, "--row", "2")
	if err != nil {
		t.Fatalf("clients import --row: %v", err)
	}
	requireContains(t, out, "Imported 2 clients (0 already registered, 0 invalid)")
}

func TestClientsImportFlagValidation(t *testing.T) {
	env := setupCLITestEnv(t)
	table := filepath.Join(env.baseDir, "names.csv")
	if err := os.WriteFile(table, []byte("John Doe\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if _, _, err := env.run(t, "clients", "import", table, "--row", "1", "--column", "1"); err == nil {
		t.Fatal("expected --row and --column to be mutually exclusive")
	}
	if _, _, err := env.run(t, "clients", "import", table, "--column", "0"); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error for column 0, got %v", err)
	}
	if _, _, err := env.run(t, "clients", "import", table, "--delimiter", ";;"); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error for delimiter, got %v", err)
	}
}

func TestNamesFromArgs(t *testing.T) {
	cases := []struct {
		args []string
		want []string
	}{
		{[]string{"John", "Doe"}, []string{"John Doe"}},
		{[]string{"Marie", "Jane", "Smith"}, []string{"Marie Jane Smith"}},
		{[]string{"John Doe", "Ann Lee"}, []string{"John Doe", "Ann Lee"}},
		{[]string{"John Doe"}, []string{"John Doe"}},
	}
	for _, tc := range cases {
		got, err := namesFromArgs(tc.args)
		if err != nil {
			t.Fatalf("namesFromArgs(%q): %v", tc.args, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("namesFromArgs(%q) = %q, want %q", tc.args, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("namesFromArgs(%q) = %q, want %q", tc.args, got, tc.want)
			}
		}
	}
}

func TestClientsAddRejectsMixedQuoting(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "clients", "add", "John Doe", "Smith")
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, err.Error(), "quote every name")

	out, _, err := env.run(t, "clients", "list")
	if err != nil {
		t.Fatalf("clients list: %v", err)
	}
	requireContains(t, out, "No clients registered")

	if _, _, err := env.run(t, "clients", "remove", "Ann", "John Doe"); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error on remove, got %v", err)
	}
}
