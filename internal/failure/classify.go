package failure

import "strings"

const maxMessageLen = 200

const forbiddenMessage = "HTTP 403 Forbidden. YouTube is blocking the download. Try:\n" +
	"1. Update yt-dlp to the latest version\n" +
	"2. Enable cookies from a browser with a signed-in account\n" +
	"3. Wait a few minutes and try again"

type rule struct {
	match   func(lower string) bool
	kind    Kind
	message func(raw string) string
}

func containsAny(subs ...string) func(string) bool {
	return func(lower string) bool {
		for _, sub := range subs {
			if strings.Contains(lower, sub) {
				return true
			}
		}
		return false
	}
}

func fixed(msg string) func(string) string {
	return func(string) string { return msg }
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		match:   containsAny("sign in to confirm your age", "age-restricted"),
		kind:    KindAgeRestricted,
		message: fixed("This video is age-restricted. Enable cookies from a signed-in browser to download it."),
	},
	{
		match:   containsAny("private video"),
		kind:    KindPrivateVideo,
		message: fixed("This video is private and cannot be downloaded."),
	},
	{
		match:   containsAny("video unavailable", "this video has been removed"),
		kind:    KindVideoUnavailable,
		message: fixed("This video is unavailable."),
	},
	{
		match:   containsAny("this content is not available"),
		kind:    KindRegionBlocked,
		message: fixed("This video is not available in your region."),
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "requires login") ||
				(strings.Contains(lower, "cookies") && strings.Contains(lower, "please"))
		},
		kind:    KindLoginRequired,
		message: fixed("This video requires login. Enable cookies from a signed-in browser."),
	},
	{
		match:   containsAny("unable to recognize playlist", "not a valid url"),
		kind:    KindUnviewablePlaylist,
		message: fixed("This playlist is not accessible."),
	},
	{
		match:   containsAny("http error 403", "forbidden"),
		kind:    KindForbidden,
		message: fixed(forbiddenMessage),
	},
	{
		match:   containsAny("http error 429"),
		kind:    KindRateLimited,
		message: fixed("Rate limited by YouTube. Wait a few minutes before trying again."),
	},
}

// Classify maps raw tool diagnostics to exactly one error kind. It never fails:
// text that matches no rule yields a generic error carrying the last
// meaningful diagnostic line.
func Classify(text string) *Error {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.match(lower) {
			return New(r.kind, r.message(text))
		}
	}
	return New(KindGeneric, genericMessage(text))
}

func genericMessage(text string) string {
	var last string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(strings.ToUpper(line), "WARNING") {
			continue
		}
		last = line
	}
	if last == "" {
		last = strings.TrimSpace(text)
	}
	last = Truncate(last, maxMessageLen)
	if last == "" {
		return "Unknown yt-dlp error"
	}
	return last
}

// Truncate clips s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
