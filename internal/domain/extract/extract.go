// Package extract fetches product pages and pulls title and price out of
// inconsistently structured markup via ordered locator chains.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultTimeout        = 15 * time.Second
	defaultDelay          = 1500 * time.Millisecond
	defaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.9"
	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"
)

// Result holds what one fetch yielded. Absence of a field is a normal outcome:
// page layouts vary and change over time, so a miss signals "not this time",
// never an error.
type Result struct {
	Title      string
	TitleFound bool
	Price      decimal.Decimal
	PriceFound bool
}

// titleLocators are tried in order; the first non-empty trimmed text wins.
var titleLocators = []string{
	"span#productTitle",
	"h1#title span#productTitle",
}

// priceLocator is one rule for a known price-rendering layout.
type priceLocator struct {
	name string
	text func(doc *goquery.Document) string
}

// priceLocators are tried in order; the first non-empty text wins. The
// whole/fraction pair concatenates integer digits and trailing decimal digits,
// the remaining rules read a single element.
var priceLocators = []priceLocator{
	{name: "whole-fraction", text: wholeFractionText},
	{name: "offscreen", text: selectorText("span.a-price span.a-offscreen")},
	{name: "ourprice", text: selectorText("span#priceblock_ourprice")},
	{name: "dealprice", text: selectorText("span#priceblock_dealprice")},
	{name: "pricetopay", text: selectorText("span.priceToPay span.a-price-whole")},
}

func selectorText(selector string) func(*goquery.Document) string {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
}

// wholeFractionText reads the split price layout. "Whole" carries all the
// integer digits and "fraction" carries the trailing decimal digits as its own
// text; the two are concatenated around a decimal point, never summed. The
// fraction element is optional: a page rendering only the whole part still
// yields a price.
func wholeFractionText(doc *goquery.Document) string {
	whole := strings.TrimSpace(doc.Find("span.a-price-whole").First().Text())
	if whole == "" {
		return ""
	}
	fraction := strings.TrimSpace(doc.Find("span.a-price-fraction").First().Text())
	if fraction == "" {
		return strings.TrimSuffix(cleanPriceText(whole), ".")
	}
	return strings.TrimSuffix(cleanPriceText(whole), ".") + "." + cleanPriceText(fraction)
}

// Engine fetches pages and extracts product fields. All request-shaping state
// (headers, timeout, politeness delay) is injected at construction.
type Engine struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
	accept         string
	delay          time.Duration
	logger         logger.Logger
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		client:         &http.Client{Timeout: defaultTimeout},
		userAgent:      defaultUserAgent,
		acceptLanguage: defaultAcceptLanguage,
		accept:         defaultAccept,
		delay:          defaultDelay,
		logger:         logger.Named("extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches pageURL and applies the locator chains. A transport-level
// problem (network error, non-2xx status) returns an error wrapping
// ErrTransport; markup-shape problems never do.
func (e *Engine) Extract(ctx context.Context, pageURL string) (Result, error) {
	if err := e.politenessDelay(ctx); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	doc, err := e.fetch(ctx, pageURL)
	if err != nil {
		metrics.RecordTransportError()
		return Result{}, err
	}

	var res Result
	for _, sel := range titleLocators {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			res.Title = text
			res.TitleFound = true
			break
		}
	}
	if !res.TitleFound {
		metrics.RecordTitleMiss()
		e.logger.Debug(ctx, "no title locator matched", logger.String("url", pageURL))
	}

	for _, loc := range priceLocators {
		text := loc.text(doc)
		if text == "" {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSuffix(cleanPriceText(text), "."))
		if err != nil {
			e.logger.Debug(ctx, "price text failed to parse",
				logger.String("locator", loc.name),
				logger.String("text", text),
			)
			continue
		}
		res.Price = price
		res.PriceFound = true
		break
	}
	if !res.PriceFound {
		metrics.RecordPriceMiss()
		e.logger.Debug(ctx, "no price locator matched", logger.String("url", pageURL))
	}

	return res, nil
}

// politenessDelay sleeps for the configured delay before each fetch so checks
// never hammer the origin. Not a retry/backoff mechanism.
func (e *Engine) politenessDelay(ctx context.Context) error {
	if e.delay <= 0 {
		return nil
	}
	t := time.NewTimer(e.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept-Language", e.acceptLanguage)
	req.Header.Set("Accept", e.accept)

	start := time.Now()
	resp, err := e.client.Do(req)
	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return doc, nil
}

// cleanPriceText strips everything that is not a digit or decimal point, so
// currency symbols and thousands separators never reach the parser.
func cleanPriceText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
