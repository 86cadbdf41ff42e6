package validation

import "testing"

func TestValidPrivilegeID_Valid(t *testing.T) {
	valids := []string{
		"a",
		"group:resource:edit-resource",
		"system:group:create-group",
		"a1:b2",
		"x-y:z",
	}
	for _, v := range valids {
		if !ValidPrivilegeID(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidPrivilegeID_Invalid(t *testing.T) {
	invalids := []string{
		"",
		":lead",
		"trail:",
		"Group:Resource:Edit",
		"has space",
		"-start",
		"end-",
		mkLen(200),
	}
	for _, v := range invalids {
		if ValidPrivilegeID(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidRoleName(t *testing.T) {
	if !ValidRoleName("curator") || !ValidRoleName("data-editor.v2") {
		t.Fatal("expected valid role names")
	}
	for _, v := range []string{"", "has:colon", "UPPER", "-x", "x-"} {
		if ValidRoleName(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func mkLen(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = 'a'
	}
	return string(out)
}
