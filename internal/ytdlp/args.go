package ytdlp

import "strings"

// Cookies selects a browser cookie store for yt-dlp.
type Cookies struct {
	Browser string
	Profile string
}

// Spec renders the --cookies-from-browser value, or "" when unset.
func (c Cookies) Spec() string {
	browser := strings.TrimSpace(c.Browser)
	if browser == "" {
		return ""
	}
	if profile := strings.TrimSpace(c.Profile); profile != "" {
		return browser + ":" + profile
	}
	return browser
}

// Args returns the cookie flags, or nil when unset.
func (c Cookies) Args() []string {
	spec := c.Spec()
	if spec == "" {
		return nil
	}
	return []string{"--cookies-from-browser", spec}
}

// Trim bounds a download to a section of the media. Either side may be empty.
type Trim struct {
	Start string
	End   string
}

// IsSet reports whether any bound is present.
func (t Trim) IsSet() bool {
	return strings.TrimSpace(t.Start) != "" || strings.TrimSpace(t.End) != ""
}

// Section renders the --download-sections value.
func (t Trim) Section() string {
	start := strings.TrimSpace(t.Start)
	if start == "" {
		start = "0"
	}
	end := strings.TrimSpace(t.End)
	if end == "" {
		end = "inf"
	}
	return "*" + start + "-" + end
}

// DownloadArgs describes one stream download attempt.
type DownloadArgs struct {
	URL            string
	Selector       string
	OutputTemplate string
	Trim           Trim
	Cookies        Cookies
}

// Build renders the yt-dlp argv (without the binary or --ffmpeg-location).
func (a DownloadArgs) Build() []string {
	args := []string{
		"-f", a.Selector,
		"-o", a.OutputTemplate,
		"--no-continue",
		"--force-overwrites",
		"--no-playlist",
		"--no-mtime",
	}
	if a.Trim.IsSet() {
		args = append(args, "--download-sections", a.Trim.Section())
	}
	args = append(args, a.Cookies.Args()...)
	return append(args, a.URL)
}
