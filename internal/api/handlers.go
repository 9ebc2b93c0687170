package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"youassist/internal/rag/pipeline"
	"youassist/internal/transcript"
	"youassist/pkg/logger"
)

// RAGService is the orchestrator surface consumed by the handlers.
type RAGService interface {
	Ingest(ctx context.Context, corpusID, transcriptText string) error
	Summarize(ctx context.Context, transcriptText string) (string, error)
	Chat(ctx context.Context, userQuery string) (string, pipeline.Outcome, error)
}

// TranscriptSource fetches caption segments for a video id.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error)
}

// DocumentRenderer renders text as a downloadable document.
type DocumentRenderer interface {
	Render(title, text string) ([]byte, error)
}

// Handler holds the HTTP handlers for the service.
type Handler struct {
	rag      RAGService
	source   TranscriptSource
	renderer DocumentRenderer
	log      *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(rag RAGService, source TranscriptSource, renderer DocumentRenderer, log *logger.Logger) *Handler {
	return &Handler{rag: rag, source: source, renderer: renderer, log: log}
}

type extractTranscriptRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

type summarizeRequest struct {
	TranscriptText string `json:"transcript_text" binding:"required"`
}

type chatRequest struct {
	UserQuery string `json:"user_query" binding:"required"`
}

type renderPDFRequest struct {
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
}

// ExtractTranscript fetches a video's transcript, ingests it into the chunk
// store under the video's corpus, and returns the full text.
func (h *Handler) ExtractTranscript(c *gin.Context) {
	var req extractTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	videoID, err := transcript.ExtractVideoID(req.VideoURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	segments, err := h.source.Fetch(c.Request.Context(), videoID)
	if err != nil {
		h.log.Error(fmt.Sprintf("Transcript fetch failed for video %s: %v", videoID, err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	transcriptText := transcript.JoinText(segments)
	if err := h.rag.Ingest(c.Request.Context(), videoID, transcriptText); err != nil {
		h.log.Error(fmt.Sprintf("Ingestion failed for video %s: %v", videoID, err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcript_text": transcriptText})
}

// Summarize generates a summary of the posted transcript text.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.rag.Summarize(c.Request.Context(), req.TranscriptText)
	if err != nil {
		h.log.Error(fmt.Sprintf("Summarization failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Chat answers a query against the ingested transcript. A blocked query or
// answer is a 200 carrying the block message: policy outcomes are not
// faults. Only infrastructure failures map to 500.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, outcome, err := h.rag.Chat(c.Request.Context(), req.UserQuery)
	if err != nil {
		h.log.Error(fmt.Sprintf("Chat failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if outcome == pipeline.BlockedFault {
		h.log.Error("Chat blocked by scanner infrastructure failure")
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// RenderPDF renders the posted text as a downloadable PDF.
func (h *Handler) RenderPDF(c *gin.Context) {
	var req renderPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.renderer.Render(req.Title, req.Text)
	if err != nil {
		h.log.Error(fmt.Sprintf("PDF rendering failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="document.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
