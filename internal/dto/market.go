package dto

import "time"

// OHLCV is one daily bar. Date is normalized to UTC midnight.
type OHLCV struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// FundamentalData is a point-in-time fundamentals record. Nil fields are unknown.
// EPSGrowth and DividendYield are percentages.
type FundamentalData struct {
	Symbol        string    `json:"symbol"`
	PERatio       *float64  `json:"pe_ratio"`
	EPS           *float64  `json:"eps"`
	EPSGrowth     *float64  `json:"eps_growth"`
	Beta          *float64  `json:"beta"`
	DividendYield *float64  `json:"dividend_yield"`
	MarketCap     *float64  `json:"market_cap"`
	ReportDate    time.Time `json:"report_date"`
}

type SentimentData struct {
	Symbol       string    `json:"symbol" validate:"required"`
	Score        float64   `json:"score" validate:"gte=0,lte=100"`
	RawScore     float64   `json:"raw_score" validate:"gte=-1,lte=1"`
	Label        string    `json:"label" validate:"omitempty,oneof=bullish bearish neutral"`
	ArticleCount int       `json:"article_count" validate:"gte=0"`
	FetchedAt    time.Time `json:"fetched_at"`
}

type CompanyProfile struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Exchange  string  `json:"exchange"`
	Industry  string  `json:"industry"`
	Currency  string  `json:"currency"`
	MarketCap float64 `json:"market_cap"`
}

type GetBarsParam struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	Timeframe string
}

// Yahoo Finance API Response
type YahooFinanceResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				GmtOffset          int64   `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// Finnhub /stock/profile2 response
type FinnhubProfileResponse struct {
	Ticker               string  `json:"ticker"`
	Name                 string  `json:"name"`
	Exchange             string  `json:"exchange"`
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	Currency             string  `json:"currency"`
	MarketCapitalization float64 `json:"marketCapitalization"` // millions
}

type FinnhubSeriesPoint struct {
	Period string  `json:"period"`
	V      float64 `json:"v"`
}

// Finnhub /stock/metric?metric=all response, only the fields we read.
type FinnhubMetricResponse struct {
	Symbol string `json:"symbol"`
	Metric struct {
		Beta                         *float64 `json:"beta"`
		DividendYieldIndicatedAnnual *float64 `json:"dividendYieldIndicatedAnnual"`
		MarketCapitalization         *float64 `json:"marketCapitalization"`
	} `json:"metric"`
	Series struct {
		Quarterly struct {
			EPS []FinnhubSeriesPoint `json:"eps"`
			PE  []FinnhubSeriesPoint `json:"peTTM"`
		} `json:"quarterly"`
	} `json:"series"`
}
