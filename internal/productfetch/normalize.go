package productfetch

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidPayload возвращается для пустого ответа сервиса.
var ErrInvalidPayload = errors.New("invalid product data")

// Product: нормализованные данные товара маркетплейса.
type Product struct {
	Title         string   `json:"title"`
	TitleVi       string   `json:"titleVi"`
	OriginalPrice float64  `json:"originalPrice"`
	SalePrice     float64  `json:"salePrice"`
	Discount      int      `json:"discount"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Images        []string `json:"images"`
	Specs         []any    `json:"specs"`
	Description   string   `json:"description"`
	DescriptionVi string   `json:"descriptionVi"`
	Keywords      string   `json:"keywords"`
	Tags          string   `json:"tags"`
}

// Normalize приводит ответ сервиса к единому виду. Поддерживаются
// альтернативные имена полей разных поставщиков данных.
func Normalize(raw map[string]any) (Product, error) {
	if len(raw) == 0 {
		return Product{}, ErrInvalidPayload
	}

	title := firstString(raw, "title", "product_title", "name")
	if title == "" {
		title = "Product"
	}
	titleVi := firstString(raw, "titleVi", "title_vi", "product_title_vi")
	if titleVi == "" {
		titleVi = title
	}

	discount := int(math.Round(firstNumber(raw, "discount")))
	if discount == 0 {
		discount = CalcDiscount(
			firstNumber(raw, "list_price", "original_price", "originalPrice"),
			firstNumber(raw, "sale_price", "price", "salePrice"),
		)
	}

	images := firstList(raw, "images", "image_urls", "imageList")
	if len(images) == 0 {
		if img := firstString(raw, "image"); img != "" {
			images = []string{img}
		}
	}

	specs, _ := raw["specs"].([]any)
	if len(specs) == 0 {
		specs, _ = raw["specifications"].([]any)
	}
	if specs == nil {
		specs = []any{}
	}

	return Product{
		Title:         title,
		TitleVi:       titleVi,
		OriginalPrice: firstNumber(raw, "originalPrice", "original_price", "list_price", "price"),
		SalePrice:     firstNumber(raw, "salePrice", "sale_price", "price", "original_price"),
		Discount:      discount,
		Rating:        firstNumber(raw, "rating", "avg_rating", "averageRating"),
		Reviews:       int(firstNumber(raw, "reviews", "review_count", "reviewCount")),
		Images:        images,
		Specs:         specs,
		Description:   firstString(raw, "description", "desc"),
		DescriptionVi: firstString(raw, "descriptionVi", "description_vi", "descVi"),
		Keywords:      joined(raw["keywords"]),
		Tags:          joined(raw["tags"]),
	}, nil
}

// CalcDiscount возвращает процент скидки, округлённый до целого.
func CalcDiscount(original, sale float64) int {
	if original == 0 || sale == 0 || sale >= original {
		return 0
	}
	return int(math.Round((original - sale) / original * 100))
}

var productIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/item/[^/]*?(\d+)\.html`),
	regexp.MustCompile(`/(\d+)\.html`),
	regexp.MustCompile(`/store/product/[^/]*?(\d+)\.html`),
	regexp.MustCompile(`item-ajax/(\d+)`),
}

// ExtractProductID извлекает числовой идентификатор товара из ссылки маркетплейса.
func ExtractProductID(rawURL string) (string, bool) {
	clean, _, _ := strings.Cut(strings.TrimSpace(rawURL), "?")
	if clean == "" {
		return "", false
	}
	for _, re := range productIDPatterns {
		if m := re.FindStringSubmatch(clean); m != nil {
			return m[1], true
		}
	}
	return "", false
}

const marketDomains = `(com|ru|es|fr|it|de|nl|pt|pl|tr|co\.jp|co\.uk)`

var productURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(www\.)?aliexpress\.` + marketDomains + `/item/[^/\s]+\.html(\?\S*)?$`),
	regexp.MustCompile(`^https?://[a-z]{2}\.?aliexpress\.` + marketDomains + `/item/[^/\s]+\.html(\?\S*)?$`),
	regexp.MustCompile(`^https?://(www\.)?aliexpress\.` + marketDomains + `/store/product/[^/\s]+\.html(\?\S*)?$`),
}

// ValidProductURL сообщает, похожа ли ссылка на страницу товара маркетплейса.
func ValidProductURL(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	for _, re := range productURLPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstNumber возвращает первое ненулевое числовое значение. Строки
// разбираются как числа, нечисловые значения пропускаются.
func firstNumber(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if n := number(raw[k]); n != 0 {
			return n
		}
	}
	return 0
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func firstList(raw map[string]any, keys ...string) []string {
	for _, k := range keys {
		list, ok := raw[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		out := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func joined(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
