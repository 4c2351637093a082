package productfetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestNormalize_AlternativeFieldNames(t *testing.T) {
	p, err := Normalize(decode(t, `{
		"product_title": "Steel Watch",
		"list_price": "100",
		"sale_price": 75,
		"avg_rating": 4.5,
		"review_count": "12",
		"image_urls": ["a.jpg", "b.jpg"],
		"specifications": [{"k":"v"}],
		"desc": "Nice",
		"keywords": ["watch", "steel"],
		"tags": "men"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Steel Watch", p.Title)
	assert.Equal(t, "Steel Watch", p.TitleVi)
	assert.Equal(t, 100.0, p.OriginalPrice)
	assert.Equal(t, 75.0, p.SalePrice)
	assert.Equal(t, 25, p.Discount)
	assert.Equal(t, 4.5, p.Rating)
	assert.Equal(t, 12, p.Reviews)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
	assert.Len(t, p.Specs, 1)
	assert.Equal(t, "Nice", p.Description)
	assert.Equal(t, "watch, steel", p.Keywords)
	assert.Equal(t, "men", p.Tags)
}

func TestNormalize_Defaults(t *testing.T) {
	p, err := Normalize(decode(t, `{"image": "only.jpg", "price": 10}`))
	require.NoError(t, err)

	assert.Equal(t, "Product", p.Title)
	assert.Equal(t, []string{"only.jpg"}, p.Images)
	assert.Equal(t, 10.0, p.OriginalPrice)
	assert.Equal(t, 10.0, p.SalePrice)
	assert.Equal(t, 0, p.Discount)
	assert.NotNil(t, p.Specs)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestCalcDiscount(t *testing.T) {
	assert.Equal(t, 33, CalcDiscount(30, 20))
	assert.Equal(t, 0, CalcDiscount(20, 30))
	assert.Equal(t, 0, CalcDiscount(0, 10))
	assert.Equal(t, 0, CalcDiscount(10, 0))
}

func TestExtractProductID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.aliexpress.com/item/1005001234567890.html", "1005001234567890", true},
		{"https://www.aliexpress.com/item/steel-watch-1005001234567890.html?spm=a2g0o", "1005001234567890", true},
		{"https://aliexpress.ru/store/product/watch-42.html", "42", true},
		{"https://m.aliexpress.com/item-ajax/777", "777", true},
		{"https://example.com/product", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		id, ok := ExtractProductID(tt.url)
		assert.Equal(t, tt.wantOK, ok, tt.url)
		assert.Equal(t, tt.wantID, id, tt.url)
	}
}

func TestValidProductURL(t *testing.T) {
	assert.True(t, ValidProductURL("https://www.aliexpress.com/item/1005001234567890.html"))
	assert.True(t, ValidProductURL(" https://vi.aliexpress.com/item/1.html?x=1 "))
	assert.True(t, ValidProductURL("https://aliexpress.co.uk/store/product/abc.html"))
	assert.False(t, ValidProductURL("https://example.com/item/1.html"))
	assert.False(t, ValidProductURL("not a url"))
}

func TestClient_FetchByURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/product" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["url"] != "https://www.aliexpress.com/item/1.html" {
			t.Fatalf("url = %q", body["url"])
		}
		_, _ = w.Write([]byte(`{"title":"Bag","salePrice":9.5,"originalPrice":19,"images":["x.jpg"]}`))
	}))
	defer ts.Close()

	p, err := NewClient(ts.URL).FetchByURL(context.Background(), "https://www.aliexpress.com/item/1.html")
	require.NoError(t, err)
	assert.Equal(t, "Bag", p.Title)
	assert.Equal(t, 9.5, p.SalePrice)
	assert.Equal(t, 50, p.Discount)
}

func TestClient_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("q") != "gold watch" {
			t.Fatalf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`[{"name":"A"},{},{"title":"B"}]`))
	}))
	defer ts.Close()

	list, err := NewClient(ts.URL).Search(context.Background(), "gold watch")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)
	assert.Equal(t, "B", list[1].Title)
}

func TestClient_Errors(t *testing.T) {
	_, err := NewClient("").FetchByURL(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err = NewClient(ts.URL).FetchByURL(context.Background(), "x")
	assert.Error(t, err)
}
