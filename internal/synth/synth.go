// Package synth produces the decorative numbers the dashboard shows next to real
// prices: prediction overlays, sentiment scores and demo series. Nothing here is a
// model. All randomness comes from a caller-supplied seed so output is reproducible.
package synth

import (
	"math"
	"math/rand/v2"
	"time"
)

// Generator draws every synthetic value from one seeded source.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Overlay holds the three synthetic prediction lines drawn around actual prices.
type Overlay struct {
	LSTM         []float64 `json:"lstm"`
	RandomForest []float64 `json:"randomForest"`
	Hybrid       []float64 `json:"hybrid"`
}

// Overlay scales each actual price by a uniform factor per line:
// lstm in [0.98,1.02), randomForest in [0.99,1.01), hybrid in [0.995,1.005).
func (g *Generator) Overlay(actual []float64) Overlay {
	o := Overlay{
		LSTM:         make([]float64, len(actual)),
		RandomForest: make([]float64, len(actual)),
		Hybrid:       make([]float64, len(actual)),
	}
	for i, p := range actual {
		o.LSTM[i] = p * (0.98 + g.rng.Float64()*0.04)
	}
	for i, p := range actual {
		o.RandomForest[i] = p * (0.99 + g.rng.Float64()*0.02)
	}
	for i, p := range actual {
		o.Hybrid[i] = p * (0.995 + g.rng.Float64()*0.01)
	}
	return o
}

// Label is a sentiment class.
type Label string

const (
	Positive  Label = "positive"
	Negative  Label = "negative"
	Neutral   Label = "neutral"
	Bullish   Label = "bullish"
	Bearish   Label = "bearish"
	Uncertain Label = "uncertain"
	Fear      Label = "fear"
	Greed     Label = "greed"
)

// Labels lists every class in the order distributions are reported.
var Labels = []Label{Positive, Negative, Neutral, Bullish, Bearish, Uncertain, Fear, Greed}

// Headline is one scored news line.
type Headline struct {
	Text       string    `json:"text"`
	Sentiment  Label     `json:"sentiment"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence,omitempty"`
	Emotions   *Emotions `json:"emotions,omitempty"`
}

// Emotions scores a headline on six fixed axes.
type Emotions struct {
	Joy      float64 `json:"joy"`
	Fear     float64 `json:"fear"`
	Anger    float64 `json:"anger"`
	Surprise float64 `json:"surprise"`
	Sadness  float64 `json:"sadness"`
	Trust    float64 `json:"trust"`
}

// ModelMetrics is the fixed scorecard shown under the demo sentiment panel.
// ConfusionMatrix rows and columns follow Labels.
type ModelMetrics struct {
	Accuracy        float64 `json:"accuracy"`
	Precision       float64 `json:"precision"`
	Recall          float64 `json:"recall"`
	F1Score         float64 `json:"f1Score"`
	ConfusionMatrix [][]int `json:"confusionMatrix"`
}

// Sentiment is the panel shown beside the price chart.
type Sentiment struct {
	Positive         float64           `json:"positive"`
	Neutral          float64           `json:"neutral"`
	Negative         float64           `json:"negative"`
	Distribution     map[Label]float64 `json:"distribution,omitempty"`
	Headlines        []Headline        `json:"headlines"`
	OverallSentiment Label             `json:"overallSentiment"`
	ModelMetrics     *ModelMetrics     `json:"modelMetrics,omitempty"`
}

// Sentiment returns the generic market panel attached to uploaded data.
func (g *Generator) Sentiment() Sentiment {
	return Sentiment{
		Positive: 0.4 + g.rng.Float64()*0.3,
		Neutral:  0.2 + g.rng.Float64()*0.3,
		Negative: 0.1 + g.rng.Float64()*0.3,
		Headlines: []Headline{
			{Text: "Market shows strong performance amid economic recovery", Sentiment: Positive, Score: 0.85},
			{Text: "Analysts remain cautious about future market trends", Sentiment: Neutral, Score: 0.72},
			{Text: "Volatility concerns affect investor sentiment", Sentiment: Negative, Score: 0.78},
		},
		OverallSentiment: Positive,
	}
}

var basePrices = map[string]float64{
	"AAPL":  175,
	"NVDA":  450,
	"TSLA":  200,
	"AMZN":  140,
	"GOOGL": 125,
	"MSFT":  350,
}

// BasePrice is the starting price of a demo walk; unknown symbols start at 100.
func BasePrice(symbol string) float64 {
	if p, ok := basePrices[symbol]; ok {
		return p
	}
	return 100
}

// DemoSeries is a generated price walk with its overlays.
type DemoSeries struct {
	Dates   []string  `json:"dates"`
	Actual  []float64 `json:"actual"`
	Overlay Overlay   `json:"-"`
}

// Demo walks days daily prices ending on now's calendar date, starting from
// BasePrice(symbol). Each step applies a slow sine trend plus ±1% noise, and each
// overlay gets its own noise band around the walk.
func (g *Generator) Demo(symbol string, days int, now time.Time) DemoSeries {
	if days <= 0 {
		days = 30
	}
	d := DemoSeries{
		Dates:  make([]string, 0, days),
		Actual: make([]float64, 0, days),
		Overlay: Overlay{
			LSTM:         make([]float64, 0, days),
			RandomForest: make([]float64, 0, days),
			Hybrid:       make([]float64, 0, days),
		},
	}
	price := BasePrice(symbol)
	const volatility = 0.02
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -(days - 1 - i))
		d.Dates = append(d.Dates, day.UTC().Format("2006-01-02"))

		trend := math.Sin(float64(i)*0.1) * 0.005
		price *= 1 + trend + (g.rng.Float64()-0.5)*volatility
		d.Actual = append(d.Actual, price)

		d.Overlay.LSTM = append(d.Overlay.LSTM, price*(1+(g.rng.Float64()-0.5)*0.03))
		d.Overlay.RandomForest = append(d.Overlay.RandomForest, price*(1+(g.rng.Float64()-0.5)*0.025))
		d.Overlay.Hybrid = append(d.Overlay.Hybrid, price*(1+(g.rng.Float64()-0.5)*0.015))
	}
	return d
}

// SymbolSentiment builds the per-symbol panel of the demo view. Shares are the
// fraction of headlines carrying each label; the overall label is the largest
// share, with ties going to the label listed later in Labels.
func SymbolSentiment(symbol string) Sentiment {
	hs := []Headline{
		{Text: symbol + " reports strong quarterly earnings, beating analyst expectations", Sentiment: Positive, Score: 0.87, Confidence: 0.92,
			Emotions: &Emotions{Joy: 0.8, Fear: 0.1, Anger: 0.05, Surprise: 0.7, Sadness: 0.02, Trust: 0.85}},
		{Text: "Market volatility affects " + symbol + " stock performance amid economic uncertainty", Sentiment: Uncertain, Score: 0.72, Confidence: 0.78,
			Emotions: &Emotions{Joy: 0.2, Fear: 0.6, Anger: 0.3, Surprise: 0.4, Sadness: 0.3, Trust: 0.4}},
		{Text: "Analysts upgrade " + symbol + " price target following recent product launch", Sentiment: Bullish, Score: 0.92, Confidence: 0.95,
			Emotions: &Emotions{Joy: 0.9, Fear: 0.05, Anger: 0.02, Surprise: 0.6, Sadness: 0.01, Trust: 0.88}},
		{Text: symbol + " faces regulatory challenges in international markets", Sentiment: Bearish, Score: 0.78, Confidence: 0.84,
			Emotions: &Emotions{Joy: 0.1, Fear: 0.7, Anger: 0.5, Surprise: 0.3, Sadness: 0.4, Trust: 0.2}},
		{Text: "Institutional investors increase " + symbol + " holdings in latest filing", Sentiment: Greed, Score: 0.85, Confidence: 0.89,
			Emotions: &Emotions{Joy: 0.7, Fear: 0.2, Anger: 0.1, Surprise: 0.5, Sadness: 0.05, Trust: 0.8}},
		{Text: symbol + " stock plummets as investors panic over earnings miss", Sentiment: Fear, Score: 0.91, Confidence: 0.94,
			Emotions: &Emotions{Joy: 0.05, Fear: 0.95, Anger: 0.6, Surprise: 0.8, Sadness: 0.7, Trust: 0.1}},
	}
	dist := make(map[Label]float64, len(Labels))
	for _, l := range Labels {
		dist[l] = 0
	}
	for _, h := range hs {
		dist[h.Sentiment] += 1 / float64(len(hs))
	}
	overall := Labels[0]
	for _, l := range Labels[1:] {
		if dist[l] >= dist[overall] {
			overall = l
		}
	}
	return Sentiment{
		Positive:         dist[Positive],
		Neutral:          dist[Neutral],
		Negative:         dist[Negative],
		Distribution:     dist,
		Headlines:        hs,
		OverallSentiment: overall,
		ModelMetrics:     demoMetrics(),
	}
}

func demoMetrics() *ModelMetrics {
	return &ModelMetrics{
		Accuracy:  0.942,
		Precision: 0.924,
		Recall:    0.918,
		F1Score:   0.921,
		ConfusionMatrix: [][]int{
			{45, 2, 1, 0, 1, 1, 0, 0},
			{1, 42, 2, 1, 2, 1, 1, 0},
			{2, 1, 38, 3, 2, 3, 1, 0},
			{0, 1, 2, 41, 3, 2, 1, 0},
			{1, 3, 1, 2, 39, 2, 2, 0},
			{1, 2, 4, 2, 1, 35, 3, 2},
			{0, 2, 1, 0, 2, 3, 37, 5},
			{0, 0, 1, 1, 1, 2, 4, 41},
		},
	}
}
