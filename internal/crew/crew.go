// Package crew runs the automated workflows behind the chat API: a
// lightweight conversational task and a multi-stage playlist pipeline
// (research, catalog search, cover image, synthesis).
package crew

import (
	"context"
	"fmt"
	"log"

	"github.com/sorennelson/the-preview-crew/internal/llm"
)

// Notifier receives named progress notifications while a workflow runs.
// Implementations must be safe to call from the workflow's goroutine.
type Notifier interface {
	Notify(eventType, message string)
}

// Inputs carries one invocation's parameters.
type Inputs struct {
	Subject     string
	Date        string
	ChatHistory string
	ImageURL    string
}

// Crew wires the agents and tools for both workflows. A single Crew is shared
// by all requests; per-invocation state lives in the call stack.
type Crew struct {
	client  llm.Client
	serper  Tool
	scrape  Tool
	catalog Tool
	image   Tool
	maxIter int
	rpm     int
}

func New(client llm.Client, serper, scrape, catalog, image Tool, maxIter, rpm int) *Crew {
	return &Crew{
		client:  client,
		serper:  serper,
		scrape:  scrape,
		catalog: catalog,
		image:   image,
		maxIter: maxIter,
		rpm:     rpm,
	}
}

func notify(n Notifier, eventType, message string) {
	if n != nil {
		n.Notify(eventType, message)
	}
}

func stepFunc(n Notifier) StepFunc {
	if n == nil {
		return nil
	}
	return func(tool string) { n.Notify("step", tool) }
}

// KickoffChat runs the lightweight conversational workflow: one dynamically
// built task on an agent that can still reach the research, catalog and image
// tools, so playlist-ish requests the intent heuristic missed are handled here.
func (c *Crew) KickoffChat(ctx context.Context, in Inputs, n Notifier) (string, error) {
	agent := NewAgent("chat_agent",
		`You're a friendly and knowledgeable assistant who helps users with their questions while maintaining conversation context. You can discuss previous topics and build upon earlier conversations. Never return direct search results, always filter the results to maintain a normal conversation.`,
		c.client,
		[]Tool{c.serper, c.scrape, c.catalog, c.image},
		c.maxIter, c.rpm)

	history := in.ChatHistory
	if history == "" {
		history = "Start of conversation"
	}

	attached := ""
	if in.ImageURL != "" {
		attached = fmt.Sprintf("\nThe user attached an image: %s", in.ImageURL)
	}

	task := fmt.Sprintf(`Previous conversation:
%s

Current message: %s%s
Today's date: %s

Respond naturally to the user's message while considering the conversation history.
Use web search as needed.
If the message is about creating a playlist, use the Spotify search to build one.
If the message is about a new image, use the image generation tool and include the result as <IMAGE:url>.
Otherwise, provide a direct and helpful response.
Keep the response as short as possible, don't overwhelm the user with a long response.`,
		history, in.Subject, attached, in.Date)

	notify(n, "task_update", "Thinking")
	out, err := agent.Run(ctx, task, stepFunc(n))
	if err != nil {
		return "", err
	}
	notify(n, "task_complete", "Thinking")
	return out, nil
}

// KickoffPlaylist runs the fixed pipeline of research, catalog search, cover
// image generation and synthesis, and returns the final markdown artifact.
func (c *Crew) KickoffPlaylist(ctx context.Context, in Inputs, n Notifier) (string, error) {
	log.Printf("🎵 Starting playlist pipeline for subject: %s", in.Subject)

	researcher := NewAgent("researcher",
		`You are a meticulous music and culture researcher. You dig into the themes, era, mood and sound of a subject using web search and page scraping, and produce concise, well-sourced notes other specialists can work from.`,
		c.client, []Tool{c.serper, c.scrape}, c.maxIter, c.rpm)

	playlistCreator := NewAgent("playlist_creator",
		`You are a playlist curator with encyclopedic taste. Given research notes about a subject, you search the Spotify catalog for fitting tracks and podcast episodes and assemble them with their open.spotify.com links.`,
		c.client, []Tool{c.catalog}, c.maxIter, c.rpm)

	imageGenerator := NewAgent("image_generator",
		`You design striking playlist cover art. Given a subject and its mood, you craft one image prompt, generate the image, and report the resulting URL exactly as the tool returned it.`,
		c.client, []Tool{c.image}, 5, c.rpm)

	manager := NewAgent("manager",
		`You are the editor assembling the final answer for the user. You merge the curated playlist and the cover image into a single clean markdown document.`,
		c.client, nil, c.maxIter, c.rpm)

	notify(n, "task_update", "Researching the subject")
	researchNotes, err := researcher.Run(ctx, fmt.Sprintf(
		`Research the subject %q as of %s. Cover its mood, era, musical style and notable related artists or works. Return concise research notes.`,
		in.Subject, in.Date), stepFunc(n))
	if err != nil {
		return "", fmt.Errorf("research task: %w", err)
	}
	notify(n, "task_complete", "Researching the subject")

	notify(n, "task_update", "Searching the catalog")
	playlist, err := playlistCreator.Run(ctx, fmt.Sprintf(
		`Using these research notes, find about 10 songs and up to 10 podcast episodes on Spotify that fit the subject %q. Include the open.spotify.com link for every entry.

Research notes:
%s`, in.Subject, researchNotes), stepFunc(n))
	if err != nil {
		return "", fmt.Errorf("catalog task: %w", err)
	}
	notify(n, "task_complete", "Searching the catalog")

	notify(n, "task_update", "Generating cover art")
	imageOut, err := imageGenerator.Run(ctx, fmt.Sprintf(
		`Generate one playlist cover image for the subject %q. Respond with only the image URL returned by the tool.`,
		in.Subject), stepFunc(n))
	if err != nil {
		return "", fmt.Errorf("image task: %w", err)
	}
	notify(n, "task_complete", "Generating cover art")

	notify(n, "task_update", "Writing the final answer")
	final, err := manager.Run(ctx, fmt.Sprintf(
		`Assemble the final playlist answer for the subject %q as markdown: a short title, a numbered **Songs** list and a **Podcasts** list with their links, exactly as curated below. End the document with the cover image reference on its own line in the form <IMAGE:url>, using this image URL: %s

Curated playlist:
%s`, in.Subject, imageOut, playlist), stepFunc(n))
	if err != nil {
		return "", fmt.Errorf("synthesis task: %w", err)
	}
	notify(n, "task_complete", "Writing the final answer")

	log.Printf("✅ Playlist pipeline completed for subject: %s", in.Subject)
	return final, nil
}
