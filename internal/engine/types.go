package engine

import "encoding/json"

// TranscriptOption is one transcript language the backend can process for a video.
type TranscriptOption struct {
	LanguageCode   string `json:"language_code"`
	LanguageName   string `json:"language"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

// Citation points an answer at a span of the video.
// Values are stored exactly as the backend returned them.
type Citation struct {
	StartTimeSeconds float64 `json:"start_time"`
	EndTimeSeconds   float64 `json:"end_time"`
	Label            string  `json:"formatted,omitempty"`
	Excerpt          string  `json:"text_segment"`
}

// ChatAnswer is the backend's reply to a single question.
type ChatAnswer struct {
	Answer    string     `json:"answer"`
	VideoID   string     `json:"video_id"`
	Question  string     `json:"question"`
	Citations []Citation `json:"timestamps"`
}

// ProcessResult acknowledges a processing request.
type ProcessResult struct {
	Success bool   `json:"success"`
	VideoID string `json:"video_id"`
	Message string `json:"message"`
}

// VideoStats describes the processed transcript of one video.
type VideoStats struct {
	VideoID          string  `json:"video_id"`
	LanguageCode     string  `json:"language_code"`
	WordCount        int     `json:"word_count"`
	TranscriptLength int     `json:"transcript_length"`
	ProcessedAt      float64 `json:"processed_at"` // unix seconds
	ProcessingTime   float64 `json:"processing_time"`
	ChunkCount       int     `json:"chunk_count"`
}

// InteractionStats describes how a video has been used since processing.
type InteractionStats struct {
	TotalQuestions  int      `json:"total_questions"`
	TopicsDiscussed []string `json:"topics_discussed"`
	EngagementScore float64  `json:"engagement_score"`
}

// VideoAnalytics is the per-video analytics document.
type VideoAnalytics struct {
	VideoStats       VideoStats       `json:"video_stats"`
	InteractionStats InteractionStats `json:"interaction_stats"`
}

// WordAnalysis counts the words behind a sentiment verdict.
type WordAnalysis struct {
	PositiveWords    int `json:"positive_words"`
	NegativeWords    int `json:"negative_words"`
	EducationalWords int `json:"educational_words"`
	TotalWords       int `json:"total_words"`
}

// Sentiment is the backend's tone analysis for a video.
type Sentiment struct {
	OverallSentiment string       `json:"overall_sentiment"`
	EmotionalTone    []string     `json:"emotional_tone"`
	ConfidenceScore  float64      `json:"confidence_score"`
	WordAnalysis     WordAnalysis `json:"word_analysis"`
}

// Summary is the raw AI summary of a video. Text fields may carry markdown.
type Summary struct {
	BriefSummary      string   `json:"brief_summary"`
	DetailedSummary   string   `json:"detailed_summary"`
	KeyTakeaways      []string `json:"key_takeaways"`
	TechnicalConcepts []string `json:"technical_concepts"`
	GeneratedAt       float64  `json:"generated_at"` // unix seconds
}

// DashboardVideo is one processed video on the dashboard.
type DashboardVideo struct {
	VideoID   string         `json:"video_id"`
	Status    string         `json:"status"`
	Analytics VideoAnalytics `json:"analytics"`
	Sentiment Sentiment      `json:"sentiment"`
}

// SystemStats aggregates across every processed video.
type SystemStats struct {
	TotalQuestionsAsked int     `json:"total_questions_asked"`
	AvgProcessingTime   float64 `json:"avg_processing_time"`
	TotalWordsProcessed int     `json:"total_words_processed"`
}

// Dashboard is the cross-video analytics overview.
type Dashboard struct {
	TotalVideos int              `json:"total_videos"`
	Videos      []DashboardVideo `json:"videos"`
	SystemStats SystemStats      `json:"system_stats"`
}

// SearchHit is one video's answer to a cross-video query.
type SearchHit struct {
	VideoID    string  `json:"video_id"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Relevant   bool    `json:"relevant"`
}

// SearchResult is the ranked outcome of a cross-video query.
type SearchResult struct {
	Results             []SearchHit `json:"results"`
	TotalVideosSearched int         `json:"total_videos_searched"`
}

// VideoList names every video the backend has processed.
type VideoList struct {
	ProcessedVideos []string `json:"processed_videos"`
	TotalCount      int      `json:"total_count"`
}

// VideoStatus reports whether the backend can answer questions about a video.
type VideoStatus struct {
	VideoID string `json:"video_id"`
	IsReady bool   `json:"is_ready"`
	Message string `json:"message"`
}

// Export is the backend's free-form export document.
type Export = json.RawMessage
