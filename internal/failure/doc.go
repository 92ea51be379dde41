// Package failure classifies diagnostics from yt-dlp and ffmpeg into the fixed
// error taxonomy reported to callers.
//
// Classification is an ordered rule table evaluated against lowercased text;
// the first matching rule wins and unmatched text always falls back to a
// generic error that surfaces the last meaningful diagnostic line. Errors
// produced here satisfy errors.Is against the services markers so retry and
// reporting code can reason about categories.
package failure
