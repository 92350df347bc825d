package resolver

import (
	"context"
	"strings"
)

// CharacterSuggestion "surprise me" 캐릭터 생성 결과
type CharacterSuggestion struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// SuggestCharacter 무작위 파이터 컨셉 생성
func (c *Client) SuggestCharacter(ctx context.Context) (*CharacterSuggestion, error) {
	var suggestion CharacterSuggestion
	err := c.jsonComplete(ctx, chatRequest{
		Model: suggestModel,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a creative fantasy character designer. Generate unique, visually striking fighters for a magical combat game.",
			},
			{
				Role: "user",
				Content: `Invent a unique fighting game character. Return ONLY valid JSON with two fields:
- "name": a dramatic character name (2-4 words)
- "prompt": a vivid visual description for AI image generation (60-100 words). Describe their appearance, clothing, weapons, magical effects, and mood. Use cinematic, visual language.

Be wildly creative - mix genres, cultures, and fantasy elements. No generic wizards or knights.`,
			},
		},
		Temperature: 1.0,
		MaxTokens:   200,
	}, &suggestion)
	if err != nil {
		return nil, err
	}

	return &suggestion, nil
}

// SuggestEnvironment 무작위 전투 환경 설명 생성
func (c *Client) SuggestEnvironment(ctx context.Context) (string, error) {
	content, err := c.chatComplete(ctx, chatRequest{
		Model: suggestModel,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a creative fantasy environment designer for a magical combat game.",
			},
			{
				Role:    "user",
				Content: `Invent a unique battle arena for a fantasy fighting game. Return ONLY the description text (60-100 words, no JSON wrapping). Describe the landscape, lighting, atmosphere, and any dramatic environmental features. Use vivid, cinematic visual language. Be wildly creative - mix unexpected themes.`,
			},
		},
		Temperature: 1.0,
		MaxTokens:   150,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(content), nil
}
