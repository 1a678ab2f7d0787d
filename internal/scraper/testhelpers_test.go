package scraper

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// momoListingHTML renders n listing items shaped like momo's search page.
func momoListingHTML(n, offset int) string {
	var b strings.Builder
	b.WriteString(`<html><body><span class="totalNum">共 1,234 筆</span><ul class="listAreaUl">`)
	for i := 0; i < n; i++ {
		id := offset + i + 1
		fmt.Fprintf(&b, `<li class="listAreaLi">
  <a class="goods-img-url" href="/goods/GoodsDetail.jsp?i_code=%d&amp;str_category_code=1">
    <img class="prdImg" src="//img.momoshop.com.tw/goodsimg/%d.jpg" alt="alt">
  </a>
  <div class="prdNameTitle"><h3 class="prdName">Bluetooth Headphones Model %d</h3></div>
  <p class="money"><span class="price">$<b>%d</b></span> <span>85折</span></p>
</li>`, 1000+id, id, id, 1000+id*10)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}
