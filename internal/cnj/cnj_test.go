package cnj

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"mascarado", "5618437-39.2021.8.09.0083", "56184373920218090083"},
		{"com espaços", " 0001234 12 2023 ", "0001234122023"},
		{"sem dígitos", "abc-./", ""},
		{"vazio", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, esperado %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("12345-67.890") {
		t.Error("10 dígitos deveria ser válido")
	}
	if IsValid("123.456.789") {
		t.Error("9 dígitos não deveria ser válido")
	}
	if IsValid("") {
		t.Error("vazio não deveria ser válido")
	}
}

func TestRoutingCodeCanonicalExample(t *testing.T) {
	raw := "5618437-39.2021.8.09.0083"

	if n := len(Normalize(raw)); n != 20 {
		t.Fatalf("esperado 20 dígitos, obtido %d", n)
	}

	code, ok := RoutingCode(raw)
	if !ok || code != "8.09" {
		t.Errorf("RoutingCode(%q) = (%q, %v), esperado (\"8.09\", true)", raw, code, ok)
	}

	alias, ok := Alias(raw)
	if !ok || alias != "api_publica_tjgo" {
		t.Errorf("Alias(%q) = (%q, %v)", raw, alias, ok)
	}
}

func TestTribunal(t *testing.T) {
	tests := []struct {
		code  string
		alias string
		ok    bool
	}{
		{"8.26", "api_publica_tjsp", true},
		{"8.07", "api_publica_tjdft", true},
		{"4.06", "api_publica_trf6", true},
		{"5.24", "api_publica_trt24", true},
		{"1.00", "api_publica_stf", true},
		{"9.99", "", false},
		{"8.28", "", false},
	}

	for _, tt := range tests {
		alias, ok := Tribunal(tt.code)
		if alias != tt.alias || ok != tt.ok {
			t.Errorf("Tribunal(%q) = (%q, %v), esperado (%q, %v)", tt.code, alias, ok, tt.alias, tt.ok)
		}
	}

	if len(tribunais) != 62 {
		t.Errorf("tabela de tribunais com %d entradas, esperado 62", len(tribunais))
	}
}

func TestFormat(t *testing.T) {
	if got := Format("56184373920218090083"); got != "5618437-39.2021.8.09.0083" {
		t.Errorf("Format 20 dígitos = %q", got)
	}
	if got := Format("12.345.678.901"); got != "12345678901" {
		t.Errorf("Format 11 dígitos = %q", got)
	}
	if got := Format("abc"); got != "abc" {
		t.Errorf("Format inválido = %q", got)
	}
}

func genDigits(n int) gopter.Gen {
	return gen.SliceOfN(n, gen.NumChar()).Map(func(r []rune) string {
		return string(r)
	})
}

// TestRoutingCodeProperties verifica as propriedades do roteamento para entradas arbitrárias
func TestRoutingCodeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("só números com 20 dígitos têm roteamento", prop.ForAll(
		func(digits string) bool {
			_, ok := RoutingCode(digits)
			return ok == (len(digits) == CanonicalDigits)
		},
		gen.NumString(),
	))

	properties.Property("roteamento ignora a máscara", prop.ForAll(
		func(digits string) bool {
			plain, ok1 := RoutingCode(digits)
			masked, ok2 := RoutingCode(Format(digits))
			return ok1 && ok2 && plain == masked && plain == digits[13:14]+"."+digits[14:16]
		},
		genDigits(CanonicalDigits),
	))

	properties.Property("Format preserva os dígitos", prop.ForAll(
		func(digits string) bool {
			return Normalize(Format(digits)) == digits
		},
		genDigits(CanonicalDigits),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
