package i18n

import (
	"context"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "ColOutcome"); got != "Learning Outcome" {
		t.Errorf("T(ColOutcome) = %q, want 'Learning Outcome'", got)
	}
	if got := T(ctx, "RowTotal"); got != "TOTAL" {
		t.Errorf("T(RowTotal) = %q, want 'TOTAL'", got)
	}
}

func TestTranslateFilipino(t *testing.T) {
	ctx := initLang(t, "fil")

	if got := T(ctx, "ColOutcome"); got != "Kasanayang Pampagkatuto" {
		t.Errorf("T(ColOutcome) = %q", got)
	}
	if got := T(ctx, "RowTotal"); got != "KABUUAN" {
		t.Errorf("T(RowTotal) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "ErrCountMismatch", map[string]any{"FormatItems": 58, "BloomItems": 60})
	want := "Configured 58 format items but the cognitive distribution specifies 60."
	if got != want {
		t.Errorf("Td(ErrCountMismatch) = %q, want %q", got, want)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want fallback to key", got)
	}
}
