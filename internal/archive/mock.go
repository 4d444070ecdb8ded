package archive

import (
	"context"
	"fmt"
	"math/rand"

	"news-sentiment-index/internal/types"
)

// MockSource generates deterministic synthetic headlines for offline runs
// and tests. The same month always yields the same headlines.
type MockSource struct {
	perDay int
}

func NewMockSource() *MockSource {
	return &MockSource{perDay: 20}
}

var mockEconomicHeadlines = []string{
	"Stocks Rally As Markets Cheer Strong Earnings Season",
	"Unemployment Falls To Lowest Level In A Decade",
	"Central Bank Holds Interest Rates Steady Again",
	"Factory Orders Slump Amid Weakening Global Demand",
	"Inflation Surges Past Forecasts Rattling Investors",
	"Trade Deficit Narrows On Rising Export Volumes",
	"Bank Failures Spark Fears Of Wider Credit Crunch",
	"Consumer Confidence Climbs For Third Straight Month",
	"Wages Stagnate Despite Tight Labor Market Conditions",
	"Housing Starts Collapse As Mortgage Rates Climb",
}

var mockOtherHeadlines = []string{
	"Local Team Wins Championship In Dramatic Overtime Finish",
	"New Exhibit Opens At The Metropolitan Museum",
	"Storm Season Arrives Early Along The Coast",
	"Celebrated Novelist Publishes Long Awaited Sequel",
	"City Council Debates New Park Renovation Plan",
}

// FetchMonth returns a deterministic batch of headlines for the month.
func (m *MockSource) FetchMonth(ctx context.Context, month types.Month) ([]types.Headline, error) {
	seed := int64(month.Year)*100 + int64(month.Month)
	r := rand.New(rand.NewSource(seed))

	start := month.Start()
	daysInMonth := month.Next().Start().Sub(start).Hours() / 24

	var headlines []types.Headline
	for d := 0; d < int(daysInMonth); d++ {
		day := start.AddDate(0, 0, d)
		for i := 0; i < m.perDay; i++ {
			var text string
			if r.Float64() < 0.4 {
				text = mockEconomicHeadlines[r.Intn(len(mockEconomicHeadlines))]
			} else {
				text = mockOtherHeadlines[r.Intn(len(mockOtherHeadlines))]
			}
			// Suffix keeps headlines distinct across the day.
			headlines = append(headlines, types.Headline{
				Date: day,
				Text: fmt.Sprintf("%s (%d)", text, i),
			})
		}
	}
	return headlines, nil
}
