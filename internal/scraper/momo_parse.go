package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/product-compare/internal/models"
)

const (
	momoBaseURL  = "https://www.momoshop.com.tw"
	momoMediaURL = "https://cdn3.momoshop.com.tw/momoshop/upload/media/"
)

// Listing containers, most specific first.
var momoItemSelectors = []string{
	"li.listAreaLi",
	".listAreaUl li.listAreaLi",
	"li.goodsItemLi",
	".prdListArea .goodsItemLi",
	".searchPrdListArea li",
	"li[data-gtm]",
	".goodsItemLi",
	".searchPrdList li",
}

var momoTitleSelectors = []string{
	"h3.prdName",
	".prdNameTitle h3.prdName",
	".prdName",
	"h3",
	"a[title]",
	"img[alt]",
	".goodsName",
	".goodsInfo h3",
	"a",
}

var momoPriceSelectors = []string{
	".money .price b",
	".price b",
	".money b",
	".price",
	".money",
	".cost",
	"b",
	"strong",
	".goodsPrice",
	".priceInfo",
}

var momoTotalSelectors = []string{
	"span.totalNum",
	".totalResults",
	"div[class*='total']",
}

var (
	digitsPattern = regexp.MustCompile(`\d+`)
	iCodePattern  = regexp.MustCompile(`i_code=(\d+)`)
)

// MomoPage is one parsed search result page.
type MomoPage struct {
	Products []models.Product
	// Elements counts listing containers, including ones skipped for missing
	// fields. It decides whether another page exists.
	Elements int
}

func ParseMomoPage(html string) (*MomoPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	items := momoItems(doc)
	page := &MomoPage{Elements: items.Length()}

	items.Each(func(_ int, s *goquery.Selection) {
		if p, ok := parseMomoItem(s); ok {
			page.Products = append(page.Products, p)
		}
	})

	return page, nil
}

// ParseMomoTotal reads the result counter. It returns 0 when the page has none.
func ParseMomoTotal(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	for _, selector := range momoTotalSelectors {
		text := doc.Find(selector).First().Text()
		if m := digitsPattern.FindString(strings.ReplaceAll(text, ",", "")); m != "" {
			n, _ := strconv.Atoi(m)
			if n > 0 {
				return n
			}
		}
	}
	return 0
}

func momoItems(doc *goquery.Document) *goquery.Selection {
	for _, selector := range momoItemSelectors {
		if items := doc.Find(selector); items.Length() > 0 {
			return items
		}
	}
	return doc.Find("li.listAreaLi")
}

func parseMomoItem(s *goquery.Selection) (models.Product, bool) {
	title := momoTitle(s)
	if title == "" {
		return models.Product{}, false
	}

	price := momoPrice(s)
	if price <= 0 {
		return models.Product{}, false
	}

	link := momoLink(s)
	if link == "" {
		return models.Product{}, false
	}

	return models.Product{
		SKU:      MomoSKU(link),
		Title:    title,
		Price:    float64(price),
		ImageURL: momoImage(s),
		URL:      link,
		Platform: models.PlatformMomo,
	}, true
}

// momoTitle takes the first candidate longer than five characters, or the
// last non-empty one.
func momoTitle(s *goquery.Selection) string {
	var title string
	for _, selector := range momoTitleSelectors {
		el := s.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		var text string
		switch selector {
		case "img[alt]":
			text, _ = el.Attr("alt")
		case "a[title]":
			text, _ = el.Attr("title")
		default:
			text = el.Text()
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		title = text
		if len([]rune(text)) > 5 {
			break
		}
	}
	return title
}

func momoPrice(s *goquery.Selection) int {
	for _, selector := range momoPriceSelectors {
		var price int
		s.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			price = ParsePrice(el.Text())
			return price == 0
		})
		if price > 0 {
			return price
		}
	}
	return 0
}

// ParsePrice returns the largest number above 10 in text, which skips
// discount percentages and badge counts.
func ParsePrice(text string) int {
	best := 0
	for _, m := range digitsPattern.FindAllString(strings.ReplaceAll(text, ",", ""), -1) {
		n, err := strconv.Atoi(m)
		if err != nil || n <= 10 {
			continue
		}
		if n > best {
			best = n
		}
	}
	return best
}

func momoLink(s *goquery.Selection) string {
	for _, selector := range []string{"a.goods-img-url", "a[href*='/goods/']", "a[href]"} {
		if href, ok := s.Find(selector).First().Attr("href"); ok && href != "" {
			return absoluteMomoURL(href)
		}
	}
	return ""
}

func absoluteMomoURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	default:
		return momoBaseURL + href
	}
}

// MomoSKU prefers the i_code query parameter and falls back to the last path
// segment without extension.
func MomoSKU(link string) string {
	if m := iCodePattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}

	if u, err := url.Parse(link); err == nil && u.Path != "" {
		link = u.Path
	}
	link = strings.TrimRight(link, "/")
	last := link[strings.LastIndex(link, "/")+1:]
	if i := strings.Index(last, "?"); i >= 0 {
		last = last[:i]
	}
	if i := strings.Index(last, "."); i >= 0 {
		last = last[:i]
	}
	return last
}

func momoImage(s *goquery.Selection) string {
	img := s.Find("img.prdImg").First()
	if img.Length() == 0 {
		img = s.Find("img").First()
	}
	for _, attr := range []string{"src", "data-original", "data-src"} {
		if src, ok := img.Attr(attr); ok && src != "" {
			return NormalizeMomoImage(src)
		}
	}
	return ""
}

func NormalizeMomoImage(src string) string {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return momoBaseURL + src
	case strings.HasPrefix(src, "http"):
		return src
	case strings.Contains(src, "momoshop"):
		return "https://" + src
	default:
		return momoMediaURL + src
	}
}
