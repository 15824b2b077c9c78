package performance

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
)

// ScoreBuckets 점수 구간 (하한 포함, 상한 미포함; 마지막 구간은 10 포함)
var ScoreBuckets = []struct {
	Label    string
	Low, Mid float64
}{
	{"0-2", 0, 1},
	{"2-4", 2, 3},
	{"4-6", 4, 5},
	{"6-8", 6, 7},
	{"8-10", 8, 9},
}

// ScoreBucket returns the index of the bucket holding score
func ScoreBucket(score float64) int {
	i := int(math.Floor(score / 2))
	if i < 0 {
		return 0
	}
	if i >= len(ScoreBuckets) {
		return len(ScoreBuckets) - 1
	}
	return i
}

// BuildReport aggregates results and outcomes. Orphans are counted but never
// enter a bucket.
func BuildReport(results []contracts.ShieldResult, records []OutcomeRecord, since, until time.Time) *contracts.PerformanceReport {
	rep := &contracts.PerformanceReport{
		Since:        since,
		Until:        until,
		TotalSignals: len(results),
		Distribution: make(map[string]int, len(contracts.Classifications)),
	}
	rep.Overall.Label = "overall"
	rep.Followed.Label = "followed"
	rep.Ignored.Label = "ignored"

	classIdx := make(map[contracts.Classification]int, len(contracts.Classifications))
	for i, c := range contracts.Classifications {
		classIdx[c] = i
		rep.ByClassification = append(rep.ByClassification, contracts.BucketStats{Label: string(c)})
		rep.Distribution[string(c)] = 0
	}
	for _, b := range ScoreBuckets {
		rep.ByScoreBucket = append(rep.ByScoreBucket, contracts.BucketStats{Label: b.Label})
	}

	var scoreSum float64
	for _, r := range results {
		scoreSum += r.ShieldScore
		rep.Distribution[string(r.Classification)]++
		if i, ok := classIdx[r.Classification]; ok {
			rep.ByClassification[i].Signals++
		}
		rep.ByScoreBucket[ScoreBucket(r.ShieldScore)].Signals++
	}
	if len(results) > 0 {
		rep.AverageScore = round2(scoreSum / float64(len(results)))
	}

	rep.TotalOutcomes = len(records)
	for _, rec := range records {
		if rec.Orphan {
			rep.Orphans++
			continue
		}
		rep.Overall.Add(rec.Outcome)
		if i, ok := classIdx[rec.Classification]; ok {
			rep.ByClassification[i].Add(rec.Outcome)
		}
		rep.ByScoreBucket[ScoreBucket(rec.ShieldScore)].Add(rec.Outcome)
		if rec.FollowedShield {
			rep.Followed.Add(rec.Outcome)
		} else {
			rep.Ignored.Add(rec.Outcome)
		}
	}

	rep.Overall.Signals = len(results)
	finalize(&rep.Overall, &rep.Followed, &rep.Ignored)
	for i := range rep.ByClassification {
		finalize(&rep.ByClassification[i])
	}
	for i := range rep.ByScoreBucket {
		finalize(&rep.ByScoreBucket[i])
	}
	return rep
}

// BuildUserStats derives one user's profile. minOutcomes below which the
// trust score stays at the neutral 0.5.
func BuildUserStats(userID string, days int, records []OutcomeRecord, minOutcomes int) *contracts.UserStats {
	st := &contracts.UserStats{UserID: userID, Days: days}
	st.Overall.Label = "overall"
	st.Followed.Label = "followed"
	st.Ignored.Label = "ignored"

	classIdx := make(map[contracts.Classification]int, len(contracts.Classifications))
	for i, c := range contracts.Classifications {
		classIdx[c] = i
		st.ByClassification = append(st.ByClassification, contracts.BucketStats{Label: string(c)})
	}

	followed := 0
	for _, rec := range records {
		if rec.Orphan {
			continue
		}
		st.TotalOutcomes++
		if rec.FollowedShield {
			followed++
			st.Followed.Add(rec.Outcome)
		} else {
			st.Ignored.Add(rec.Outcome)
		}
		st.Overall.Add(rec.Outcome)
		if i, ok := classIdx[rec.Classification]; ok {
			st.ByClassification[i].Signals++
			st.ByClassification[i].Add(rec.Outcome)
		}
	}

	finalize(&st.Overall, &st.Followed, &st.Ignored)
	for i := range st.ByClassification {
		finalize(&st.ByClassification[i])
	}

	if st.TotalOutcomes > 0 {
		st.Compliance = round2(float64(followed) / float64(st.TotalOutcomes))
	}
	st.TrustScore = trustScore(st, minOutcomes)
	return st
}

// trustScore = half compliance + half win rate when following the shield
func trustScore(st *contracts.UserStats, minOutcomes int) float64 {
	if st.Overall.Resolved < minOutcomes {
		return 0.5
	}
	winRate := st.Followed.WinRate
	if st.Followed.Resolved == 0 {
		winRate = st.Overall.WinRate
	}
	return round2(0.5*st.Compliance + 0.5*winRate)
}

var numberPattern = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// factorKey folds numbers out of a risk factor so reasons group together
func factorKey(s string) string {
	return numberPattern.ReplaceAllString(s, "#")
}

// FindImprovements flags classifications and score buckets that win less
// than expected, and risk factors whose loss rate exceeds the overall one
func FindImprovements(rep *contracts.PerformanceReport, records []OutcomeRecord, cfg shieldconfig.Performance, th shieldconfig.Thresholds) []contracts.Improvement {
	var out []contracts.Improvement

	for _, b := range rep.ByClassification {
		expected := cfg.Expected.For(contracts.Classification(b.Label))
		if b.Resolved >= cfg.MinSamples && b.WinRate < expected-cfg.Tolerance {
			out = append(out, contracts.Improvement{
				Kind:     "classification",
				Subject:  b.Label,
				Samples:  b.Resolved,
				Observed: b.WinRate,
				Expected: expected,
				Message:  fmt.Sprintf("%s wins %.0f%% of %d trades, expected %.0f%%", b.Label, b.WinRate*100, b.Resolved, expected*100),
			})
		}
	}

	for i, b := range rep.ByScoreBucket {
		expected := cfg.Expected.For(th.Classify(ScoreBuckets[i].Mid))
		if b.Resolved >= cfg.MinSamples && b.WinRate < expected-cfg.Tolerance {
			out = append(out, contracts.Improvement{
				Kind:     "score_bucket",
				Subject:  b.Label,
				Samples:  b.Resolved,
				Observed: b.WinRate,
				Expected: expected,
				Message:  fmt.Sprintf("scores %s win %.0f%% of %d trades, expected %.0f%%", b.Label, b.WinRate*100, b.Resolved, expected*100),
			})
		}
	}

	if rep.Overall.Resolved == 0 {
		return out
	}
	overallLoss := float64(rep.Overall.Losses) / float64(rep.Overall.Resolved)

	type tally struct{ resolved, losses int }
	factors := make(map[string]*tally)
	for _, rec := range records {
		if rec.Orphan || !rec.Outcome.Outcome.Resolved() {
			continue
		}
		seen := make(map[string]bool)
		for _, f := range rec.RiskFactors {
			key := factorKey(f)
			if seen[key] {
				continue
			}
			seen[key] = true
			t, ok := factors[key]
			if !ok {
				t = &tally{}
				factors[key] = t
			}
			t.resolved++
			if rec.Outcome.Outcome == contracts.OutcomeLoss {
				t.losses++
			}
		}
	}

	keys := make([]string, 0, len(factors))
	for k := range factors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		t := factors[k]
		if t.resolved < cfg.MinSamples {
			continue
		}
		lossRate := float64(t.losses) / float64(t.resolved)
		if lossRate >= overallLoss+cfg.RiskFactorLossMargin {
			out = append(out, contracts.Improvement{
				Kind:     "risk_factor",
				Subject:  k,
				Samples:  t.resolved,
				Observed: round2(lossRate),
				Expected: round2(overallLoss),
				Message:  fmt.Sprintf("%q loses %.0f%% of %d trades vs %.0f%% overall", k, lossRate*100, t.resolved, overallLoss*100),
			})
		}
	}
	return out
}

func finalize(buckets ...*contracts.BucketStats) {
	for _, b := range buckets {
		b.Finalize()
		b.WinRate = round4(b.WinRate)
		b.AvgPips = round2(b.AvgPips)
		b.TotalPips = round2(b.TotalPips)
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
