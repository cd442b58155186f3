package smssvc

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core"
)

var (
	SentMessages = make([]core.SMSMessage, 0)
	mu           sync.Mutex
)

// consoleService logs outbound texts instead of sending them; used in DEV
// and as the recording mock in tests.
type consoleService struct {
	sender        string
	disableOutput bool
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.SMSService {
	return &consoleService{sender: conf.SMS.Sender}
}

// NewConsoleServiceMock runs silently; for tests.
func NewConsoleServiceMock(conf *core.Config) core.SMSService {
	return &consoleService{sender: conf.SMS.Sender, disableOutput: true}
}

func (svc *consoleService) Send(_ context.Context, msg core.SMSMessage) (string, error) {
	if !svc.disableOutput {
		log.Printf("SMS From: %s\r\nTo: %s\r\n\r\n%s\r\n", svc.sender, msg.To, msg.Body)
	}

	mu.Lock()
	SentMessages = append(SentMessages, msg)
	mu.Unlock()

	// fake provider message ID, Twilio-shaped
	return fmt.Sprintf("SM%s", strings.ReplaceAll(uuid.New().String(), "-", "")), nil
}

// ClearSentMessages resets the recording buffer between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
