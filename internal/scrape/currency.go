package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// linkGroups maps the link-list item classes of a currency page to the
// record slice that collects their hrefs.
var linkGroups = []struct {
	class  string
	assign func(d *model.CurrencyDetail, href string)
}{
	{"link-explorer", func(d *model.CurrencyDetail, h string) { d.Explorers = append(d.Explorers, h) }},
	{"link-website", func(d *model.CurrencyDetail, h string) { d.Webs = append(d.Webs, h) }},
	{"link-chat", func(d *model.CurrencyDetail, h string) { d.Chats = append(d.Chats, h) }},
	{"link-message-board", func(d *model.CurrencyDetail, h string) { d.MessageBoards = append(d.MessageBoards, h) }},
}

// Currency normalizes a per-currency detail page.
func (p *Parser) Currency(body []byte, convert string) (*model.CurrencyDetail, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "currency page is not parseable markup"}
	}

	summary := doc.Find("div.coin-summary").First()
	if summary.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "currency page has no coin summary block",
			Fragment: clip(body),
		}
	}

	detail := &model.CurrencyDetail{
		Name:   summary.AttrOr("data-name", ""),
		Symbol: summary.AttrOr("data-symbol", ""),
		Slug:   summary.AttrOr("data-slug", ""),
	}
	if detail.Symbol == "" || detail.Slug == "" {
		return nil, &model.SchemaError{
			What:     "coin summary block lacks symbol or slug",
			Fragment: snippet(summary),
		}
	}

	rankText := strings.TrimPrefix(cellText(summary.Find("span.rank")), "Rank ")
	if rank, err := p.co.Int(rankText); err == nil && rank != nil {
		detail.Rank = *rank
	}

	var parseErr error
	amount := func(sel string) *decimal.Decimal {
		if parseErr != nil {
			return nil
		}
		d, err := p.co.Amount(cellText(summary.Find(sel)))
		if err != nil {
			parseErr = err
		}
		return d
	}

	detail.Price = amount("span.price")
	detail.MarketsCap = amount("span.market-cap")
	detail.MarketsVolume24h = amount("span.volume-24h")
	detail.TotalSupply = amount("span.total-supply")
	detail.MaxSupply = amount("span.max-supply")

	// A trailing asterisk on circulating supply marks a mineable coin.
	circText := cellText(summary.Find("span.circulating-supply"))
	detail.Mineable = strings.Contains(circText, "*")
	if parseErr == nil {
		detail.CirculatingSupply, parseErr = p.co.Amount(circText)
	}
	if parseErr != nil {
		return nil, parseErr
	}

	convert = strings.ToLower(convert)
	if convert != "" && convert != "usd" {
		if raw, ok := summary.Find("span.price").Attr("data-" + convert); ok {
			if d, err := p.co.Amount(raw); err == nil && d != nil {
				detail.Converted = map[string]*decimal.Decimal{"price_" + convert: d}
			}
		}
	}

	doc.Find("ul.coin-links li").Each(func(_ int, li *goquery.Selection) {
		href, ok := li.Find("a").Attr("href")
		if !ok || href == "" {
			return
		}
		switch {
		case li.HasClass("link-source-code"):
			detail.SourceCode = href
		case li.HasClass("link-announcement"):
			detail.Announcement = href
		default:
			for _, group := range linkGroups {
				if li.HasClass(group.class) {
					group.assign(detail, href)
					return
				}
			}
		}
	})

	return detail, nil
}
