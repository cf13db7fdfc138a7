package claims

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testNow = time.Unix(1000, 0)

func baseDescriptor() *Descriptor {
	return &Descriptor{
		Issuer:   "https://issuer",
		Lifetime: time.Hour,
	}
}

func TestBuild(t *testing.T) {
	for _, tc := range []struct {
		Name     string
		Desc     func(d *Descriptor)
		Opts     Options
		WantJSON string
	}{
		{
			Name:     "times from clock",
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600}`,
		},
		{
			Name: "lifetime truncated to seconds",
			Desc: func(d *Descriptor) {
				d.Lifetime = 90*time.Second + 900*time.Millisecond
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":1090}`,
		},
		{
			Name: "single audience is a string",
			Desc: func(d *Descriptor) {
				d.Audiences = []string{"api"}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"aud":"api"}`,
		},
		{
			Name: "multiple audiences are an array in order",
			Desc: func(d *Descriptor) {
				d.Audiences = []string{"b", "a", "c"}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"aud":["b","a","c"]}`,
		},
		{
			Name: "caller aud is dropped when there are no audiences",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "aud", Value: "sneaky"}}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600}`,
		},
		{
			Name: "confirmation is embedded parsed",
			Desc: func(d *Descriptor) {
				d.Confirmation = `{ "jkt": "x",  "n": 1 }`
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"cnf":{"jkt":"x","n":1}}`,
		},
		{
			Name: "scopes as array keep duplicates and order",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{
					{Type: "scope", Value: "openid"},
					{Type: "sub", Value: "123"},
					{Type: "scope", Value: "api"},
					{Type: "scope", Value: "openid"},
				}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"scope":["openid","api","openid"],"sub":"123"}`,
		},
		{
			Name: "scopes as space delimited string",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{
					{Type: "scope", Value: "openid"},
					{Type: "scope", Value: "api"},
				}
			},
			Opts:     Options{EmitScopesAsSpaceDelimitedString: true},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"scope":"openid api"}`,
		},
		{
			Name: "single scope is still an array",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "scope", Value: "openid"}}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"scope":["openid"]}`,
		},
		{
			Name: "amr is deduplicated",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{
					{Type: "amr", Value: "pwd"},
					{Type: "amr", Value: "otp"},
					{Type: "amr", Value: "pwd"},
				}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"amr":["pwd","otp"]}`,
		},
		{
			Name: "reserved claims from caller are superseded",
			Desc: func(d *Descriptor) {
				d.Audiences = []string{"api"}
				d.Claims = []Claim{
					{Type: "iss", Value: "https://bad"},
					{Type: "exp", Value: "1", ValueType: ValueInteger64},
					{Type: "aud", Value: "other"},
					{Type: "cnf", Value: "not json", ValueType: ValueJSON},
					{Type: "sub", Value: "123"},
				}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"aud":"api","sub":"123"}`,
		},
		{
			Name: "single and multi valued claims",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{
					{Type: "role", Value: "admin"},
					{Type: "sub", Value: "123"},
					{Type: "role", Value: "user"},
					{Type: "email", Value: "foo@bar.com"},
				}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,"role":["admin","user"],"sub":"123","email":"foo@bar.com"}`,
		},
		{
			Name: "typed values",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{
					{Type: "email_verified", Value: "True", ValueType: ValueBoolean},
					{Type: "level", Value: "42", ValueType: ValueInteger32},
					{Type: "big", Value: "9007199254740993", ValueType: ValueInteger64},
					{Type: "ratio", Value: "0.25", ValueType: ValueDouble},
					{Type: "address", Value: `{"street":"1 Main","zip":"12345"}`, ValueType: ValueJSON},
					{Type: "n", Value: "1", ValueType: ValueInteger32},
					{Type: "n", Value: "2", ValueType: ValueInteger64},
					{Type: "n", Value: "three"},
				}
			},
			WantJSON: `{"iss":"https://issuer","nbf":1000,"iat":1000,"exp":4600,` +
				`"email_verified":true,"level":42,"big":9007199254740993,"ratio":0.25,` +
				`"address":{"street":"1 Main","zip":"12345"},"n":[1,2,"three"]}`,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			d := baseDescriptor()
			if tc.Desc != nil {
				tc.Desc(d)
			}

			p, err := Build(d, testNow, tc.Opts)
			if err != nil {
				t.Fatalf("unexpected error building payload: %v", err)
			}

			jb, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("unexpected error marshaling payload: %v", err)
			}

			if diff := cmp.Diff(tc.WantJSON, string(jb)); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	for _, tc := range []struct {
		Name      string
		Desc      func(d *Descriptor)
		WantClaim string
	}{
		{
			Name:      "missing issuer",
			Desc:      func(d *Descriptor) { d.Issuer = "" },
			WantClaim: Issuer,
		},
		{
			Name:      "zero lifetime",
			Desc:      func(d *Descriptor) { d.Lifetime = 0 },
			WantClaim: Expiration,
		},
		{
			Name:      "sub second lifetime",
			Desc:      func(d *Descriptor) { d.Lifetime = 500 * time.Millisecond },
			WantClaim: Expiration,
		},
		{
			Name:      "confirmation not json",
			Desc:      func(d *Descriptor) { d.Confirmation = "not json" },
			WantClaim: Confirmation,
		},
		{
			Name:      "confirmation with trailing data",
			Desc:      func(d *Descriptor) { d.Confirmation = `{"jkt":"x"} {}` },
			WantClaim: Confirmation,
		},
		{
			Name: "integer32 not numeric",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "level", Value: "abc", ValueType: ValueInteger32}}
			},
			WantClaim: "level",
		},
		{
			Name: "integer32 overflow",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "level", Value: "2147483648", ValueType: ValueInteger32}}
			},
			WantClaim: "level",
		},
		{
			Name: "bad value in multi valued claim",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{
					{Type: "n", Value: "1", ValueType: ValueInteger64},
					{Type: "n", Value: "x", ValueType: ValueInteger64},
				}
			},
			WantClaim: "n",
		},
		{
			Name: "boolean",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "flag", Value: "1", ValueType: ValueBoolean}}
			},
			WantClaim: "flag",
		},
		{
			Name: "double not finite",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "ratio", Value: "NaN", ValueType: ValueDouble}}
			},
			WantClaim: "ratio",
		},
		{
			Name: "json",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "address", Value: "{", ValueType: ValueJSON}}
			},
			WantClaim: "address",
		},
		{
			Name: "double hex float",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "ratio", Value: "0x1p-2", ValueType: ValueDouble}}
			},
			WantClaim: "ratio",
		},
		{
			Name: "double with underscores",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "ratio", Value: "1_000.5", ValueType: ValueDouble}}
			},
			WantClaim: "ratio",
		},
		{
			Name: "double infinity",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "ratio", Value: "Inf", ValueType: ValueDouble}}
			},
			WantClaim: "ratio",
		},
		{
			Name: "json with invalid utf-8",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "address", Value: "{\"a\":\"\xff\"}", ValueType: ValueJSON}}
			},
			WantClaim: "address",
		},
		{
			Name:      "confirmation with invalid utf-8",
			Desc:      func(d *Descriptor) { d.Confirmation = "{\"jkt\":\"\xff\"}" },
			WantClaim: Confirmation,
		},
		{
			Name: "string with invalid utf-8",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "name", Value: "bad\xff"}}
			},
			WantClaim: "name",
		},
		{
			Name: "scope with invalid utf-8",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "scope", Value: "api\xff"}}
			},
			WantClaim: Scope,
		},
		{
			Name:      "audience with invalid utf-8",
			Desc:      func(d *Descriptor) { d.Audiences = []string{"api\xff"} },
			WantClaim: Audience,
		},
		{
			Name: "unknown value type",
			Desc: func(d *Descriptor) {
				d.Claims = []Claim{{Type: "x", Value: "y", ValueType: ValueType(99)}}
			},
			WantClaim: "x",
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			d := baseDescriptor()
			tc.Desc(d)

			p, err := Build(d, testNow, Options{})
			if err == nil {
				t.Fatalf("want error, got payload %v", p.Names())
			}

			var perr *PayloadConstructionError
			if !errors.As(err, &perr) {
				t.Fatalf("want *PayloadConstructionError, got %T: %v", err, err)
			}
			if perr.Claim != tc.WantClaim {
				t.Errorf("want error for claim %q, got %q", tc.WantClaim, perr.Claim)
			}
		})
	}
}

func TestBuildDecimalDoubles(t *testing.T) {
	for _, v := range []string{"1", "-1.5", "+2.", ".5", "1e3", "2.5E-2", " 3.25 "} {
		d := baseDescriptor()
		d.Claims = []Claim{{Type: "ratio", Value: v, ValueType: ValueDouble}}
		if _, err := Build(d, testNow, Options{}); err != nil {
			t.Errorf("%q: unexpected error: %v", v, err)
		}
	}
}

func TestBuildNilDescriptor(t *testing.T) {
	_, err := Build(nil, testNow, Options{})
	var perr *PayloadConstructionError
	if !errors.As(err, &perr) {
		t.Fatalf("want *PayloadConstructionError, got %T: %v", err, err)
	}
}

func TestBuildNamesUnique(t *testing.T) {
	d := baseDescriptor()
	d.Audiences = []string{"a", "b"}
	d.Confirmation = `{"jkt":"x"}`
	for _, typ := range []string{"iss", "nbf", "iat", "exp", "aud", "cnf", "scope", "amr", "sub", "sub", "role"} {
		d.Claims = append(d.Claims, Claim{Type: typ, Value: "v"})
	}

	p, err := Build(d, testNow, Options{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"iss", "nbf", "iat", "exp", "aud", "cnf", "scope", "amr", "sub", "role"}
	if diff := cmp.Diff(want, p.Names()); diff != "" {
		t.Error(diff)
	}

	v, _ := p.Get("sub")
	if diff := cmp.Diff([]interface{}{"v", "v"}, v); diff != "" {
		t.Errorf("multi valued sub: %s", diff)
	}
}

func TestBuildDoesNotRetainDescriptor(t *testing.T) {
	d := baseDescriptor()
	d.Audiences = []string{"a", "b"}

	p, err := Build(d, testNow, Options{})
	if err != nil {
		t.Fatal(err)
	}

	d.Audiences[0] = "changed"

	aud, _ := p.Get(Audience)
	if diff := cmp.Diff([]string{"a", "b"}, aud); diff != "" {
		t.Error(diff)
	}
}
