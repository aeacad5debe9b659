package constants

import (
	"math"
	"time"
)

// Length bounds, counted in characters.
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 5000
	MaxThreadTitleLength     = 200
	MaxMessageContentLength  = 10000
)

// Pagination.
const (
	DefaultPage        = 1
	DefaultPageSize    = 20
	MaxPageSize        = 100
	DefaultRecentLimit = 5
	MaxRecentLimit     = 50

	// MaxPage keeps (page-1)*MaxPageSize within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// Rate limit rule names.
const (
	RuleCreateTask   = "create_task"
	RuleUpdateTask   = "update_task"
	RuleDeleteTask   = "delete_task"
	RuleCreateThread = "create_thread"
	RuleUpdateThread = "update_thread"
	RuleDeleteThread = "delete_thread"
	RuleSendMessage  = "send_message"
	RuleAuth         = "auth"
)

// RateLimitDefault is the built-in setting for a rule: Requests per Period
// with bursts of up to Burst.
type RateLimitDefault struct {
	Requests int
	Period   time.Duration
	Burst    int
}

var RateLimitDefaults = map[string]RateLimitDefault{
	RuleCreateTask:   {Requests: 10, Period: time.Minute, Burst: 3},
	RuleUpdateTask:   {Requests: 30, Period: time.Minute, Burst: 10},
	RuleDeleteTask:   {Requests: 20, Period: time.Minute, Burst: 5},
	RuleCreateThread: {Requests: 5, Period: time.Minute, Burst: 2},
	RuleUpdateThread: {Requests: 20, Period: time.Minute, Burst: 5},
	RuleDeleteThread: {Requests: 10, Period: time.Minute, Burst: 3},
	RuleSendMessage:  {Requests: 20, Period: time.Minute, Burst: 5},
	RuleAuth:         {Requests: 10, Period: time.Minute, Burst: 5},
}
