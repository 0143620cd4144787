package broadcast

import "context"

// NoteEmbedFallback marks results where the client had no native embed
// support and the embed was degraded to a plain-text send.
const NoteEmbedFallback = "Embed not supported; sent as plain text."

// BroadcastEmbed sends a rich message to every registered client. Clients
// without native embed support receive a plain-text rendering instead; their
// result carries NoteEmbedFallback so the caller can see the degradation.
func (g *Group) BroadcastEmbed(ctx context.Context, embed Embed) Summary {
	return g.fanOut(ctx, "broadcast embed", func(ctx context.Context, e entry) Result {
		if e.embedder != nil {
			resp, err := e.embedder.SendEmbed(ctx, embed)
			if err != nil {
				return Result{Platform: e.platform, Error: err.Error()}
			}
			return Result{Success: true, Platform: e.platform, Response: resp}
		}

		resp, err := e.client.Send(ctx, FallbackText(embed), nil)
		if err != nil {
			return Result{Platform: e.platform, Error: err.Error()}
		}
		return Result{Success: true, Platform: e.platform, Response: resp, Note: NoteEmbedFallback}
	})
}

// FallbackText renders an embed as plain markdown-ish text.
func FallbackText(embed Embed) string {
	return "**" + embed.Title + "**\n" + embed.Description
}

// Severity shortcuts. Each prefixes the title with a fixed emoji and calls
// BroadcastEmbed with the matching color; no other logic.

func (g *Group) BroadcastSuccess(ctx context.Context, title, description string) Summary {
	return g.BroadcastEmbed(ctx, Embed{Title: "✅ " + title, Description: description, Color: ColorSuccess})
}

func (g *Group) BroadcastError(ctx context.Context, title, description string) Summary {
	return g.BroadcastEmbed(ctx, Embed{Title: "❌ " + title, Description: description, Color: ColorError})
}

func (g *Group) BroadcastWarning(ctx context.Context, title, description string) Summary {
	return g.BroadcastEmbed(ctx, Embed{Title: "⚠️ " + title, Description: description, Color: ColorWarning})
}

func (g *Group) BroadcastInfo(ctx context.Context, title, description string) Summary {
	return g.BroadcastEmbed(ctx, Embed{Title: "ℹ️ " + title, Description: description, Color: ColorInfo})
}
