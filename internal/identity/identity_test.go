package identity_test

import (
	"regexp"
	"testing"

	"github.com/html-hub/learninghub/internal/identity"
)

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestDeriveID_Deterministic(t *testing.T) {
	names := []string{"Alice", "Bob", "alice", "Alice ", "Мария", "久美子", ""}
	for _, n := range names {
		a, b := identity.DeriveID(n), identity.DeriveID(n)
		if a != b {
			t.Fatalf("DeriveID(%q) not deterministic: %q vs %q", n, a, b)
		}
		if !uuidShape.MatchString(a) {
			t.Fatalf("DeriveID(%q) = %q, not UUID-shaped", n, a)
		}
	}
}

func TestDeriveID_DistinctNames(t *testing.T) {
	names := []string{"Alice", "Bob", "Charlie", "alice", "Alice Smith", "Bob Smith"}
	seen := map[string]string{}
	for _, n := range names {
		id := identity.DeriveID(n)
		if prev, ok := seen[id]; ok {
			t.Fatalf("collision: %q and %q both derive %q", prev, n, id)
		}
		seen[id] = n
	}
}

func TestProgressKey_VariantsAgree(t *testing.T) {
	var id identity.StudentIdentity = identity.NameIdentity{Name: "Alice"}
	if id.ProgressKey() != identity.DeriveID("Alice") {
		t.Fatalf("name identity key should be the derived id")
	}
	if id.DisplayName() != "Alice" {
		t.Fatalf("display name = %q", id.DisplayName())
	}

	id = identity.AuthIdentity{UserID: "user-42", Username: "alice"}
	if id.ProgressKey() != "user-42" {
		t.Fatalf("auth identity key should be the account id, got %q", id.ProgressKey())
	}
}
