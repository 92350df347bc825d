package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/willemhelmet/prompt-pugilists/pkg/resolver"
)

// 리졸버 실패 시 사용하는 기본 제안 풀
var fallbackCharacters = []resolver.CharacterSuggestion{
	{Name: "Captain Thunderfist", Prompt: "A retired superhero with lightning-charged boxing gloves and a flair for dramatic entrances"},
	{Name: "Granny Hexweaver", Prompt: "A sweet-looking grandmother who knits curses into scarves and fights with enchanted knitting needles"},
	{Name: "Sir Reginald Quackington", Prompt: "A duck knight in full plate armor, wielding a baguette as a lance"},
}

var fallbackEnvironments = []string{
	"An abandoned amusement park at midnight, with a rickety rollercoaster looping overhead",
	"The deck of a pirate ship caught in a storm, cannons sliding across the planks",
	"A giant kitchen where the fighters are the size of salt shakers",
}

type SuggestionService struct {
	resolver *resolver.Client
	nextIdx  atomic.Int64
}

func NewSuggestionService(r *resolver.Client) *SuggestionService {
	return &SuggestionService{resolver: r}
}

// SuggestCharacter 캐릭터 아이디어 생성. 리졸버 실패 시 기본 풀에서 순환 제공
func (s *SuggestionService) SuggestCharacter(ctx context.Context) (*resolver.CharacterSuggestion, error) {
	suggestion, err := s.resolver.SuggestCharacter(ctx)
	if err != nil {
		fallback := fallbackCharacters[s.advance(len(fallbackCharacters))]
		return &fallback, nil
	}
	if suggestion.Name == "" || suggestion.Prompt == "" {
		return nil, fmt.Errorf("resolver returned incomplete character suggestion")
	}
	return suggestion, nil
}

// SuggestEnvironment 환경 아이디어 생성. 리졸버 실패 시 기본 풀에서 순환 제공
func (s *SuggestionService) SuggestEnvironment(ctx context.Context) (string, error) {
	suggestion, err := s.resolver.SuggestEnvironment(ctx)
	if err != nil {
		return fallbackEnvironments[s.advance(len(fallbackEnvironments))], nil
	}
	return suggestion, nil
}

func (s *SuggestionService) advance(n int) int {
	return int((s.nextIdx.Add(1) - 1) % int64(n))
}
