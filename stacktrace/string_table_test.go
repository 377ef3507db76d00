package stacktrace

import "testing"

func TestStringTableIntern(t *testing.T) {
	st := NewStringTable()

	a := st.Intern("foo")
	b := st.Intern("bar")
	again := st.Intern("foo")

	if a == b {
		t.Errorf("distinct strings share id %d", a)
	}
	if again != a {
		t.Errorf("re-interning returned %d, want %d", again, a)
	}
	if st.Name(a) != "foo" || st.Name(b) != "bar" {
		t.Errorf("names %q, %q", st.Name(a), st.Name(b))
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

func TestStringTableEmptyString(t *testing.T) {
	st := NewStringTable()
	id := st.Intern("")
	if st.Name(id) != "" {
		t.Errorf("Name(%d) = %q, want empty", id, st.Name(id))
	}
	if got, ok := st.Lookup(""); !ok || got != id {
		t.Errorf("Lookup of empty string: %d, %v", got, ok)
	}
}

func TestStringTableLookupMiss(t *testing.T) {
	st := NewStringTable()
	if _, ok := st.Lookup("never"); ok {
		t.Error("Lookup of never-interned string should miss")
	}
}
