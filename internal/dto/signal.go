package dto

import "time"

type TechnicalSignal struct {
	Action    SignalAction `json:"action"`
	Score     float64      `json:"score"`
	RSI       float64      `json:"rsi"`
	SMAShort  float64      `json:"sma_short"`
	SMALong   float64      `json:"sma_long"`
	SMATrend  float64      `json:"sma_trend"`
	Price     float64      `json:"price"`
	BuyVotes  int          `json:"buy_votes"`
	SellVotes int          `json:"sell_votes"`
	// Sufficient is false when an indicator could not be computed.
	Sufficient bool     `json:"sufficient"`
	Reasons    []string `json:"reasons"`
}

type FundamentalSignal struct {
	Action     SignalAction `json:"action"`
	Score      float64      `json:"score"`
	HasData    bool         `json:"has_data"`
	PEFavored  bool         `json:"pe_favored"`
	EPS        *float64     `json:"eps,omitempty"`
	ReportDate *time.Time   `json:"report_date,omitempty"`
	Reasons    []string     `json:"reasons"`
}

type SentimentSignal struct {
	Action       SignalAction `json:"action"`
	Score        float64      `json:"score"`
	Label        string       `json:"label"`
	ArticleCount int          `json:"article_count"`
	Confident    bool         `json:"confident"`
	Reasons      []string     `json:"reasons"`
}

type CombineInput struct {
	Technical          TechnicalSignal
	Fundamental        FundamentalSignal
	Sentiment          *SentimentSignal
	SentimentAvailable bool
	Weights            SignalWeights
}

// SourceScore is one source's contribution to a combined signal.
type SourceScore struct {
	Action SignalAction `json:"action"`
	Score  float64      `json:"score"`
	Weight float64      `json:"weight"`
}

type CombinedSignal struct {
	Action      SignalAction `json:"action"`
	TotalScore  float64      `json:"total_score"`
	Technical   SourceScore  `json:"technical"`
	Fundamental SourceScore  `json:"fundamental"`
	Sentiment   *SourceScore `json:"sentiment,omitempty"`
	// TechnicalRSI is kept so attribution and vetoes can be audited later.
	TechnicalRSI float64  `json:"technical_rsi"`
	BuyVotes     int      `json:"buy_votes"`
	SellVotes    int      `json:"sell_votes"`
	Reasons      []string `json:"reasons"`
	Vetoed       bool     `json:"vetoed"`
	VetoReason   string   `json:"veto_reason,omitempty"`
}

type SignalHistoryEntry struct {
	Date   time.Time      `json:"date"`
	Symbol string         `json:"symbol"`
	Signal CombinedSignal `json:"signal"`
}
