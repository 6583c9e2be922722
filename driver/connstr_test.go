package driver

import "testing"

func TestParseConnString_Basic(t *testing.T) {
	opts, err := ParseConnString("host=10.1.2.3:5432,10.1.2.4;db=mydb;ssl=true")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"host": "10.1.2.3:5432,10.1.2.4", "db": "mydb", "ssl": "true"}
	for k, v := range want {
		if opts[k] != v {
			t.Errorf("opts[%q] = %q, want %q", k, opts[k], v)
		}
	}
}

func TestParseConnString_QuotedValueWithEscapedQuote(t *testing.T) {
	opts, err := ParseConnString(`password='it''s a secret';db=x`)
	if err != nil {
		t.Fatal(err)
	}
	if opts["password"] != "it's a secret" {
		t.Errorf("password = %q, want %q", opts["password"], "it's a secret")
	}
	if opts["db"] != "x" {
		t.Errorf("db = %q, want x", opts["db"])
	}
}

func TestParseConnString_Errors(t *testing.T) {
	cases := []string{
		"noequalsign",
		"=emptykey",
		"password='unterminated",
		"db=x;db=y", // duplicate key
	}
	for _, s := range cases {
		if _, err := ParseConnString(s); err == nil {
			t.Errorf("ParseConnString(%q): expected an error", s)
		}
	}
}

func TestParseConnString_EmptyString(t *testing.T) {
	opts, err := ParseConnString("")
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 0 {
		t.Errorf("got %d options from an empty string, want 0", len(opts))
	}
}
