package main

import (
	"BasketMint/internal/config"
	"BasketMint/internal/feed"
	"BasketMint/internal/oracle"
)

// newSource picks the market feed named by the config.
func newSource(c *config.Config) feed.Source {
	switch c.Feed.Kind {
	case config.FeedHTTP:
		return feed.NewHTTPSource(c.Feed.BaseURL, c.Feed.APIKey, c.Feed.Symbol, c.Proxy)
	case config.FeedBars:
		var fetcher feed.BarFetcher
		if c.Feed.BaseURL != "" {
			fetcher = feed.NewRESTBarFetcher(c.Feed.BaseURL, c.Feed.APIKey, c.Proxy)
		} else {
			fetcher = feed.NewYahooBarFetcher(c.Proxy)
		}
		return feed.NewBarsSource(fetcher, c.Feed.Symbol)
	case config.FeedMock:
		return feed.NewBarsSource(&feed.MockBarFetcher{Price: 100}, c.Feed.Symbol)
	default:
		s := c.Feed.Static
		return &feed.Static{Reading: feed.Reading{
			Liquidity:    s.Liquidity,
			VolatilityBP: s.VolatilityBP,
			DemandBP:     s.DemandBP,
		}}
	}
}

// newOracle prefers the remote quote service and falls back to configured prices.
func newOracle(c *config.Config) oracle.Oracle {
	if c.Oracle.BaseURL != "" {
		return oracle.NewHTTPOracle(c.Oracle.BaseURL, c.Oracle.APIKey, c.Proxy)
	}
	return oracle.NewPriceTable(c.Oracle.Prices)
}
