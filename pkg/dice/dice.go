package dice

import (
	"math/rand"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// formulaPattern "1d20+3" 형식의 주사위 공식
var formulaPattern = regexp.MustCompile(`^(\d+)d(\d+)(?:\+(\d+))?$`)

// Roll 주사위 결과 (result는 modifier 포함 합계)
type Roll struct {
	Result   int
	Modifier int
}

// Roller 주사위 굴림기. 시드 주입으로 테스트에서 결정적 사용 가능
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller 시간 기반 시드로 Roller 생성
func NewRoller() *Roller {
	return NewSeededRoller(time.Now().UnixNano())
}

// NewSeededRoller 지정된 시드로 Roller 생성
func NewSeededRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll 공식을 파싱해 주사위를 굴린다
// 파싱 실패 시 기본값 (result 10, modifier 0)
func (r *Roller) Roll(formula string) Roll {
	match := formulaPattern.FindStringSubmatch(formula)
	if match == nil {
		return Roll{Result: 10, Modifier: 0}
	}

	count, _ := strconv.Atoi(match[1])
	sides, _ := strconv.Atoi(match[2])
	modifier := 0
	if match[3] != "" {
		modifier, _ = strconv.Atoi(match[3])
	}

	if count <= 0 || sides <= 0 {
		return Roll{Result: 10, Modifier: 0}
	}

	r.mu.Lock()
	total := 0
	for i := 0; i < count; i++ {
		total += r.rng.Intn(sides) + 1
	}
	r.mu.Unlock()

	return Roll{Result: total + modifier, Modifier: modifier}
}
