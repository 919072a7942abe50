package ayrshare

import "time"

type PostInput struct {
	Post      string
	Platforms []string
	MediaURLs []string
	// ScheduleDate nil publica na hora.
	ScheduleDate *time.Time
}

type PostOutput struct {
	ID       string
	Status   string
	PostURLs map[string]string
}

// --- PAYLOAD INTERNO: o que mandamos para a Ayrshare ---
type postRequest struct {
	Post         string   `json:"post"`
	Platforms    []string `json:"platforms"`
	MediaURLs    []string `json:"mediaUrls,omitempty"`
	ScheduleDate string   `json:"scheduleDate,omitempty"`
}

// --- RESPONSE: o que a Ayrshare devolve ---
type postResponse struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	PostIDs []struct {
		Platform string `json:"platform"`
		ID       string `json:"id"`
		PostURL  string `json:"postUrl"`
		Status   string `json:"status"`
	} `json:"postIds"`
	Errors []struct {
		Platform string `json:"platform"`
		Message  string `json:"message"`
		Code     int    `json:"code"`
	} `json:"errors"`
	Message string `json:"message"`
}
