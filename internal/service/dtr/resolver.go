package dtr

import (
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
)

// resolutionTier is one step of the resolution precedence.
type resolutionTier struct {
	confidence dtr.MatchConfidence
	lookup     func(idx *RosterIndex, digitKey, nameKey string) []*roster.EmployeeIdentity
}

// resolutionOrder is name first, then exact digits, then bounded digit suffix.
// The first tier with any candidate decides: one candidate is a match, more
// than one is ambiguous and stops resolution without consulting later tiers.
var resolutionOrder = []resolutionTier{
	{
		confidence: dtr.MatchName,
		lookup: func(idx *RosterIndex, _, nameKey string) []*roster.EmployeeIdentity {
			return idx.LookupByName(nameKey)
		},
	},
	{
		confidence: dtr.MatchExactDigit,
		lookup: func(idx *RosterIndex, digitKey, _ string) []*roster.EmployeeIdentity {
			return idx.LookupByDigits(digitKey)
		},
	},
	{
		confidence: dtr.MatchSuffixDigit,
		lookup: func(idx *RosterIndex, digitKey, _ string) []*roster.EmployeeIdentity {
			return idx.SuffixLookupByDigits(digitKey)
		},
	},
}

// Resolve matches a raw device code and raw name against the roster.
func Resolve(idx *RosterIndex, deviceCode, rawName string) dtr.Resolution {
	return ResolveKeys(idx, NormalizeDigits(deviceCode), NormalizeName(rawName))
}

// ResolveKeys is Resolve for already normalized keys.
// A nil or empty index resolves everything to unresolved.
func ResolveKeys(idx *RosterIndex, digitKey, nameKey string) dtr.Resolution {
	if idx == nil || idx.Len() == 0 {
		return dtr.Resolution{Confidence: dtr.MatchUnresolved}
	}

	for _, tier := range resolutionOrder {
		candidates := tier.lookup(idx, digitKey, nameKey)
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return dtr.Resolution{
				Identity:   candidates[0],
				Confidence: tier.confidence,
				Candidates: 1,
			}
		default:
			return dtr.Resolution{
				Confidence: dtr.MatchUnresolved,
				Ambiguous:  true,
				Candidates: len(candidates),
			}
		}
	}

	return dtr.Resolution{Confidence: dtr.MatchUnresolved}
}
