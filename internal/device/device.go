// Package device derives client device details from a User-Agent header.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Info is the parsed view of a User-Agent.
type Info struct {
	Browser string
	OS      string
	Mobile  bool
}

// Parse extracts browser, OS and mobile flag. An empty header yields a zero Info.
func Parse(userAgent string) Info {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return Info{}
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	return Info{
		Browser: strings.TrimSpace(browser),
		OS:      strings.TrimSpace(os),
		Mobile:  ua.Mobile(),
	}
}

// ParseUserAgent returns a display name such as "Chrome on Linux x86_64".
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	info := Parse(userAgent)
	browser := info.Browser
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := info.OS
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
