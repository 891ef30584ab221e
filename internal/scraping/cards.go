package scraping

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxCards caps how many markup cards a fallback strategy reads
const maxCards = 20

var (
	cardPrice = regexp.MustCompile(`\$\s?[0-9][0-9,]*`)
	cardBeds  = regexp.MustCompile(`(?i)(\d+)\s*(?:bds?|beds?|bedrooms?)\b`)
	cardBaths = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:ba|baths?|bathrooms?)\b`)
	cardSqft  = regexp.MustCompile(`(?i)([\d,]+)\s*(?:sq\.?\s?ft|sqft)\b`)
	zipCode   = regexp.MustCompile(`\b(\d{5})\b`)
)

// cardLayout describes where listing fields live inside a result card
type cardLayout struct {
	Card    string
	Address string
	Price   string
	// href fragment identifying the detail link
	LinkContains string
	Photo        string
}

// parseCards reads up to maxCards outermost cards from an HTML page
func parseCards(body []byte, layout cardLayout, baseURL string) ([]RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	cards := doc.Find(layout.Card).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(layout.Card).Length() == 0
	})

	var raws []RawListing
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= maxCards {
			return false
		}
		if raw, ok := readCard(card, layout, baseURL); ok {
			raws = append(raws, raw)
		}
		return true
	})
	return raws, nil
}

func readCard(card *goquery.Selection, layout cardLayout, baseURL string) (RawListing, bool) {
	address := collapseText(card.Find(layout.Address).First().Text())
	if address == "" {
		return RawListing{}, false
	}

	cardText := spacedText(card)

	priceText := ""
	if layout.Price != "" {
		priceText = collapseText(card.Find(layout.Price).First().Text())
	}
	if priceText == "" {
		priceText = cardPrice.FindString(cardText)
	}
	if priceText == "" {
		return RawListing{}, false
	}

	raw := RawListing{Price: priceText}
	raw.Street, raw.City, raw.State, raw.PostalCode = splitAddress(address)
	if raw.PostalCode == "" {
		if m := zipCode.FindStringSubmatch(address); m != nil && raw.City == "" {
			raw.PostalCode = m[1]
		}
	}

	if m := cardBeds.FindStringSubmatch(cardText); m != nil {
		raw.Beds = m[1]
	}
	if m := cardBaths.FindStringSubmatch(cardText); m != nil {
		raw.Baths = m[1]
	}
	if m := cardSqft.FindStringSubmatch(cardText); m != nil {
		raw.Sqft = m[1]
	}

	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, layout.LinkContains) {
			raw.URL = absoluteURL(baseURL, href)
			return false
		}
		return true
	})

	if layout.Photo != "" {
		if src, ok := card.Find(layout.Photo).First().Attr("src"); ok {
			raw.PhotoURL = absoluteURL(baseURL, src)
		}
	}
	return raw, true
}

func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// spacedText joins the text nodes of sel with spaces so adjacent elements
// such as "<b>3</b><span>bds</span>" stay separate words
func spacedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			parts = append(parts, n.Data)
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapseText(strings.Join(parts, " "))
}
