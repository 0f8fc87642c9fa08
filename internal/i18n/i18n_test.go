package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		lang string
		id   string
		want string
	}{
		{"en", "ErrGenerateQuestions", "An error occurred while generating questions. Please try again."},
		{"tr", "ErrGenerateQuestions", "Sorular oluşturulurken bir hata oluştu. Lütfen tekrar deneyin."},
		{"en", "ErrUnauthorized", "Authentication required."},
		{"tr", "ErrNotFound", "Bulunamadı."},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.id, func(t *testing.T) {
			ctx := initLang(t, tt.lang)
			if got := T(ctx, tt.id); got != tt.want {
				t.Errorf("T(%s) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")
	got := Td(ctx, "ErrInvalidRequest", map[string]any{"Reason": "bad json"})
	if got != "Invalid request: bad json" {
		t.Errorf("Td = %q", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")
	tests := []struct {
		count int
		want  string
	}{
		{1, "9 answers are required, but only 1 was given."},
		{4, "9 answers are required, but only 4 were given."},
	}
	for _, tt := range tests {
		if got := Tp(ctx, "ErrTooFewAnswers", tt.count, map[string]any{"Want": 9}); got != tt.want {
			t.Errorf("Tp(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestMissingTranslation(t *testing.T) {
	ctx := initLang(t, "en")
	if got := T(ctx, "NoSuchMessage"); got != "NoSuchMessage" {
		t.Errorf("T(NoSuchMessage) = %q, want the ID back", got)
	}
}

func TestFallbackLocalizer(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatal(err)
	}
	if got := T(context.Background(), "ErrNotFound"); got != "Not found." {
		t.Errorf("T without localizer = %q", got)
	}
}

func TestInitBadLanguage(t *testing.T) {
	if err := Init("not a language!"); err == nil {
		t.Error("expected error for malformed language tag")
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatal(err)
	}
	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "ErrNotFound")
	}))

	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{"default", "/", "", "Not found."},
		{"accept language", "/", "tr-TR,tr;q=0.9,en;q=0.8", "Bulunamadı."},
		{"query wins", "/?lang=en", "tr", "Not found."},
		{"unknown language", "/", "de", "Not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
