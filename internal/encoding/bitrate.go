package encoding

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mediapull/internal/config"
	"mediapull/internal/services"
)

// BitrateTier is a built-in rate ladder step keyed by minimum source height.
type BitrateTier struct {
	Height  int
	Bitrate string
	MaxRate string
	BufSize string
}

// BitrateTiers is ordered from the highest threshold down.
type BitrateTiers []BitrateTier

// DefaultBitrateTiers returns the built-in H.264 rate ladder.
func DefaultBitrateTiers() BitrateTiers {
	return BitrateTiers{
		{Height: 2160, Bitrate: "45M", MaxRate: "50M", BufSize: "90M"},
		{Height: 1440, Bitrate: "20M", MaxRate: "24M", BufSize: "40M"},
		{Height: 1080, Bitrate: "8M", MaxRate: "10M", BufSize: "16M"},
		{Height: 720, Bitrate: "5M", MaxRate: "6M", BufSize: "10M"},
		{Height: 480, Bitrate: "2M", MaxRate: "3M", BufSize: "4M"},
	}
}

// Pick returns the tier with the highest threshold not above height, or the
// lowest tier when the source is smaller than every threshold.
func (t BitrateTiers) Pick(height int) BitrateTier {
	if len(t) == 0 {
		return BitrateTier{}
	}
	sorted := append(BitrateTiers(nil), t...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Height > sorted[j].Height })
	for _, tier := range sorted {
		if height >= tier.Height {
			return tier
		}
	}
	return sorted[len(sorted)-1]
}

func (b BitrateTier) args() []string {
	return []string{"-b:v", b.Bitrate, "-maxrate", b.MaxRate, "-bufsize", b.BufSize}
}

// PolicyMode distinguishes the bitrate policy variants.
type PolicyMode int

const (
	PolicyAuto PolicyMode = iota
	PolicyCustom
	PolicyPerResolution
)

func (m PolicyMode) String() string {
	switch m {
	case PolicyCustom:
		return config.BitrateModeCustom
	case PolicyPerResolution:
		return config.BitrateModePerResolution
	default:
		return config.BitrateModeAuto
	}
}

// BitratePolicy decides the explicit rate arguments for a source height.
// The zero value is Auto.
type BitratePolicy struct {
	Mode          PolicyMode
	CustomMbps    int
	PerResolution map[int]int
	Tiers         BitrateTiers
}

// Auto leaves rate control to the encoder.
func Auto() BitratePolicy {
	return BitratePolicy{Mode: PolicyAuto}
}

// Custom applies one target rate in Mbps to every resolution.
func Custom(mbps int) BitratePolicy {
	return BitratePolicy{Mode: PolicyCustom, CustomMbps: mbps}
}

// PerResolution applies user rates keyed by minimum source height.
func PerResolution(rates map[int]int) BitratePolicy {
	return BitratePolicy{Mode: PolicyPerResolution, PerResolution: rates}
}

// Args returns the rate flags for a source of the given height. Custom with
// a zero rate and PerResolution without entries fall back to the tiers.
func (p BitratePolicy) Args(height int) []string {
	switch p.Mode {
	case PolicyAuto:
		return nil
	case PolicyCustom:
		if p.CustomMbps > 0 {
			return rateArgs(p.CustomMbps)
		}
	case PolicyPerResolution:
		if mbps, ok := pickRate(p.PerResolution, height); ok {
			return rateArgs(mbps)
		}
	}
	tiers := p.Tiers
	if len(tiers) == 0 {
		tiers = DefaultBitrateTiers()
	}
	return tiers.Pick(height).args()
}

func (p BitratePolicy) String() string {
	switch p.Mode {
	case PolicyCustom:
		return fmt.Sprintf("%s (%d Mbps)", p.Mode, p.CustomMbps)
	case PolicyPerResolution:
		keys := sortedHeights(p.PerResolution)
		parts := make([]string, 0, len(keys))
		for _, h := range keys {
			parts = append(parts, fmt.Sprintf("%dp=%d", h, p.PerResolution[h]))
		}
		return fmt.Sprintf("%s (%s)", p.Mode, strings.Join(parts, ", "))
	default:
		return p.Mode.String()
	}
}

func rateArgs(mbps int) []string {
	maxRate := int(float64(mbps) * 1.15)
	return []string{
		"-b:v", fmt.Sprintf("%dM", mbps),
		"-maxrate", fmt.Sprintf("%dM", maxRate),
		"-bufsize", fmt.Sprintf("%dM", mbps*2),
	}
}

func pickRate(rates map[int]int, height int) (int, bool) {
	keys := sortedHeights(rates)
	if len(keys) == 0 {
		return 0, false
	}
	for i := len(keys) - 1; i >= 0; i-- {
		if height >= keys[i] {
			return rates[keys[i]], true
		}
	}
	return rates[keys[0]], true
}

func sortedHeights(rates map[int]int) []int {
	keys := make([]int, 0, len(rates))
	for h := range rates {
		keys = append(keys, h)
	}
	sort.Ints(keys)
	return keys
}

// ParsePerResolution decodes a JSON object such as {"1080": 10, "720": 6}.
func ParsePerResolution(raw string) (map[int]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var decoded map[string]int
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, services.Wrap(services.ErrValidation, "", "parse per-resolution bitrates", "expected a JSON object of height to Mbps", err)
	}
	return convertRates(decoded)
}

func convertRates(in map[string]int) (map[int]int, error) {
	out := make(map[int]int, len(in))
	for key, mbps := range in {
		height, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(key), "p"))
		if err != nil || height <= 0 {
			return nil, services.Wrap(services.ErrValidation, "", "parse per-resolution bitrates", fmt.Sprintf("invalid height %q", key), err)
		}
		if mbps <= 0 {
			return nil, services.Wrap(services.ErrValidation, "", "parse per-resolution bitrates", fmt.Sprintf("rate for %q must be positive", key), nil)
		}
		out[height] = mbps
	}
	return out, nil
}

// PolicyFromConfig builds the configured default policy.
func PolicyFromConfig(cfg config.Encoding) (BitratePolicy, error) {
	switch cfg.BitrateMode {
	case config.BitrateModeCustom:
		return Custom(cfg.CustomBitrate), nil
	case config.BitrateModePerResolution:
		rates, err := convertRates(cfg.PerResolution)
		if err != nil {
			return BitratePolicy{}, err
		}
		return PerResolution(rates), nil
	default:
		return Auto(), nil
	}
}

// ParsePolicy builds a policy from command-line values. An empty mode keeps
// fallback.
func ParsePolicy(mode string, custom int, perResolution string, fallback BitratePolicy) (BitratePolicy, error) {
	mode = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(mode)), "-", "_")
	switch mode {
	case "":
		return fallback, nil
	case config.BitrateModeAuto:
		return Auto(), nil
	case config.BitrateModeCustom:
		return Custom(custom), nil
	case config.BitrateModePerResolution:
		rates, err := ParsePerResolution(perResolution)
		if err != nil {
			return BitratePolicy{}, err
		}
		return PerResolution(rates), nil
	default:
		return BitratePolicy{}, services.Wrap(services.ErrValidation, "", "parse bitrate mode", fmt.Sprintf("unknown bitrate mode %q", mode), nil)
	}
}
