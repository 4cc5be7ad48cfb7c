package risk

import (
	"fmt"
	"math"
)

// MaxRiskFactors caps the number of factors reported per assessment.
const MaxRiskFactors = 5

// Thresholds holds the fixed cut-offs used by the classifier.
type Thresholds struct {
	SharpeExcellent  float64
	SharpeGood       float64
	SharpeFair       float64
	SharpePoor       float64
	SortinoExcellent float64
	SortinoGood      float64
	SortinoFair      float64
	SortinoPoor      float64
	DrawdownLow      float64
	DrawdownModerate float64
	DrawdownHigh     float64
	DrawdownVeryHigh float64
	VolatilityLow    float64
	VolatilityHigh   float64
}

// DefaultThresholds are the cut-offs every classifier uses. They are not user-tunable.
var DefaultThresholds = Thresholds{
	SharpeExcellent:  1.5,
	SharpeGood:       1.0,
	SharpeFair:       0.5,
	SharpePoor:       0.0,
	SortinoExcellent: 2.0,
	SortinoGood:      1.5,
	SortinoFair:      1.0,
	SortinoPoor:      0.0,
	DrawdownLow:      0.10,
	DrawdownModerate: 0.20,
	DrawdownHigh:     0.30,
	DrawdownVeryHigh: 0.50,
	VolatilityLow:    0.15,
	VolatilityHigh:   0.30,
}

// Trigger levels for risk factors that have no classifier threshold of their own.
const (
	elevatedVolatility = 0.20
	highAnnualReturn   = 0.50
	largeDailySwing    = 0.10
)

// Classifier maps RiskMetrics to a categorical assessment.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the default thresholds
func NewClassifier() *Classifier {
	return &Classifier{thresholds: DefaultThresholds}
}

// Score sums the rule contributions. Lower is safer.
func (c *Classifier) Score(m RiskMetrics) int {
	t := c.thresholds
	score := 0

	switch {
	case m.SharpeRatio >= t.SharpeExcellent:
		score -= 2
	case m.SharpeRatio >= t.SharpeGood:
		score--
	case m.SharpeRatio < t.SharpePoor:
		score += 2
	}

	switch {
	case m.SortinoRatio >= t.SortinoExcellent:
		score -= 2
	case m.SortinoRatio >= t.SortinoGood:
		score--
	case m.SortinoRatio < t.SortinoFair:
		score++
	}

	drawdown := math.Abs(m.MaxDrawdown)
	switch {
	case drawdown <= t.DrawdownLow:
		score -= 2
	case drawdown <= t.DrawdownModerate:
		score--
	case drawdown >= t.DrawdownHigh:
		score += 2
	}

	switch {
	case m.AnnualizedVolatility <= t.VolatilityLow:
		score--
	case m.AnnualizedVolatility >= t.VolatilityHigh:
		score += 2
	}

	return score
}

// LevelForScore maps a risk score to its level. Bucket edges belong to the
// safer side: -3 is Low, -1 is Moderate, 2 is High.
func LevelForScore(score int) Level {
	switch {
	case score <= -3:
		return LevelLow
	case score <= -1:
		return LevelModerate
	case score <= 2:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}

// Classify returns the risk level for the metrics.
func (c *Classifier) Classify(m RiskMetrics) Level {
	return LevelForScore(c.Score(m))
}

// IdentifyRiskFactors lists human-readable warnings in evaluation order,
// keeping at most MaxRiskFactors.
func (c *Classifier) IdentifyRiskFactors(m RiskMetrics) []string {
	t := c.thresholds
	factors := make([]string, 0, MaxRiskFactors)

	if m.SharpeRatio < t.SharpePoor {
		factors = append(factors, fmt.Sprintf("Negative risk-adjusted returns (Sharpe ratio %.2f)", m.SharpeRatio))
	} else if m.SharpeRatio < t.SharpeFair {
		factors = append(factors, fmt.Sprintf("Poor risk-adjusted returns (Sharpe ratio %.2f)", m.SharpeRatio))
	}

	if m.SortinoRatio < t.SortinoFair {
		factors = append(factors, fmt.Sprintf("Weak downside protection (Sortino ratio %.2f)", m.SortinoRatio))
	}

	drawdown := math.Abs(m.MaxDrawdown)
	if drawdown >= t.DrawdownHigh {
		factors = append(factors, fmt.Sprintf("High maximum drawdown of %.1f%%", drawdown*100))
	} else if drawdown >= t.DrawdownModerate {
		factors = append(factors, fmt.Sprintf("Moderate maximum drawdown of %.1f%%", drawdown*100))
	}

	if m.AnnualizedVolatility >= t.VolatilityHigh {
		factors = append(factors, fmt.Sprintf("High volatility of %.1f%% annualized", m.AnnualizedVolatility*100))
	} else if m.AnnualizedVolatility >= elevatedVolatility {
		factors = append(factors, fmt.Sprintf("Elevated volatility of %.1f%% annualized", m.AnnualizedVolatility*100))
	}

	if m.AnnualizedReturn < 0 {
		factors = append(factors, fmt.Sprintf("Negative annualized return of %.1f%%", m.AnnualizedReturn*100))
	}
	if m.AnnualizedReturn > highAnnualReturn {
		factors = append(factors, fmt.Sprintf("Unusually high annualized return of %.1f%% may not be sustainable", m.AnnualizedReturn*100))
	}
	if m.BestDayReturn > largeDailySwing {
		factors = append(factors, fmt.Sprintf("Large single-day gain of %.1f%% signals sharp price swings", m.BestDayReturn*100))
	}
	if m.WorstDayReturn < -largeDailySwing {
		factors = append(factors, fmt.Sprintf("Large single-day loss of %.1f%% signals sharp price swings", m.WorstDayReturn*100))
	}

	if len(factors) > MaxRiskFactors {
		factors = factors[:MaxRiskFactors]
	}
	return factors
}

// Assess builds the full assessment for a ticker against a market context.
func (c *Classifier) Assess(ticker string, m RiskMetrics, mc MarketContext) (*RiskAssessment, error) {
	score := c.Score(m)
	level := LevelForScore(score)

	assessment := &RiskAssessment{
		RiskLevel:                level,
		RiskScore:                score,
		RiskFactors:              c.IdentifyRiskFactors(m),
		VolatilityAssessment:     VolatilityAssessment(m.AnnualizedVolatility),
		ReturnAssessment:         ReturnAssessment(m.AnnualizedReturn),
		DrawdownAssessment:       DrawdownAssessment(m.MaxDrawdown),
		InvestmentRecommendation: Recommendation(level),
		MarketContext:            mc,
	}

	narrative, err := RenderNarrative(ticker, m, assessment)
	if err != nil {
		return nil, err
	}
	assessment.OverallNarrative = narrative

	return assessment, nil
}

// VolatilityAssessment describes annualized volatility in words.
func VolatilityAssessment(volatility float64) string {
	switch {
	case volatility > 0.30:
		return "High volatility - expect significant price swings"
	case volatility > 0.15:
		return "Moderate volatility - typical price fluctuations for equities"
	default:
		return "Low volatility - relatively stable price movements"
	}
}

// ReturnAssessment describes the annualized return in words.
func ReturnAssessment(annualizedReturn float64) string {
	switch {
	case annualizedReturn > 0.10:
		return "Strong returns - outperforming typical market averages"
	case annualizedReturn > 0:
		return "Positive returns - modest growth over the period"
	default:
		return "Negative returns - the position lost value over the period"
	}
}

// DrawdownAssessment describes the maximum drawdown in words.
func DrawdownAssessment(maxDrawdown float64) string {
	drawdown := math.Abs(maxDrawdown)
	switch {
	case drawdown > 0.20:
		return "Significant drawdown - substantial peak-to-trough losses occurred"
	case drawdown > 0.10:
		return "Moderate drawdown - noticeable declines from recent highs"
	default:
		return "Limited drawdown - declines from peaks stayed contained"
	}
}

// Recommendation returns the fixed investment guidance for a risk level.
func Recommendation(level Level) string {
	switch level {
	case LevelLow:
		return "Suitable for conservative investors seeking stable returns"
	case LevelModerate:
		return "Suitable for balanced portfolios with moderate risk tolerance"
	case LevelHigh:
		return "Suitable only for investors with high risk tolerance; consider limiting position size"
	default:
		return "Speculative; suitable only for aggressive investors who can absorb large losses"
	}
}
