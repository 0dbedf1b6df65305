package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/pkg/redis"
)

// scrapeSector pulls the sector off the provider's company profile
// page. The page layout is a description list; the cell following the
// "Sector" label holds the value. Scraped sectors are slow-moving, so
// they cache for a day.
func (c *Client) scrapeSector(ctx context.Context, symbol string) (string, error) {
	cacheKey := fmt.Sprintf("sector:%s", symbol)

	var cached string
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	if err := c.local.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	pageURL := fmt.Sprintf("%s/%s", strings.TrimRight(c.profileURL, "/"), url.PathEscape(symbol))
	resp, err := c.httpClient.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("profile request failed: %w", contracts.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile status %d: %w", resp.StatusCode, contracts.ErrUnavailable)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse profile page: %w", err)
	}

	sector := extractSector(doc)
	if sector == "" {
		return "", fmt.Errorf("sector for %s: %w", symbol, contracts.ErrNotFound)
	}

	if err := c.cache.Set(ctx, cacheKey, sector, redis.TTLDaily); err != nil {
		c.logger.WithError(err).Debug("Sector cache write failed")
	}

	return sector, nil
}

func extractSector(doc *goquery.Document) string {
	var sector string
	doc.Find("dt, th").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.Text()), "sector") {
			return true
		}
		sector = strings.TrimSpace(s.Next().Text())
		return false
	})
	return sector
}
