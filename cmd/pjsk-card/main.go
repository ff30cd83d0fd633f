package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hikari-dev/pjsk-card/internal/adapters/chat"
	"github.com/hikari-dev/pjsk-card/internal/adapters/renderer"
	filestore "github.com/hikari-dev/pjsk-card/internal/adapters/storage/file"
	memstore "github.com/hikari-dev/pjsk-card/internal/adapters/storage/memory"
	"github.com/hikari-dev/pjsk-card/internal/adapters/storage/redisstore"
	"github.com/hikari-dev/pjsk-card/internal/app/card"
	"github.com/hikari-dev/pjsk-card/internal/app/interpreter"
	"github.com/hikari-dev/pjsk-card/internal/config"
	"github.com/hikari-dev/pjsk-card/internal/domain"
)

func main() {
	ctx := context.Background()

	rt := config.LoadRuntime()

	cfg, err := config.Load(ctx, rt.ConfigURL)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	catalog := domain.NewPersonaCatalog(cfg.Personas)
	interp, err := interpreter.New(card.RulesFromConfig(cfg), catalog,
		interpreter.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))))
	if err != nil {
		log.Fatalf("error building interpreter: %v", err)
	}

	// Session tier: in-process map by default, redis when configured.
	var sessions domain.SessionStore
	switch rt.SessionBackend {
	case "redis":
		log.Printf("[STORE] Using redis session store (addr=%s)", rt.RedisAddr)
		client := redis.NewClient(&redis.Options{Addr: rt.RedisAddr})
		sessions = redisstore.NewSessionStore(client, redisstore.WithTTL(cfg.TTL()))
	default:
		log.Println("[STORE] Using in-memory session store")
		sessions = memstore.NewSessionStore()
	}

	durable := filestore.NewStore(rt.StateURL)

	manager := renderer.NewManager(nil)
	defer func() {
		if err := manager.Close(); err != nil {
			log.Printf("error closing renderer: %v", err)
		}
	}()

	svc := card.NewService(cfg, interp, catalog, sessions, durable, manager)

	if removed, err := svc.CleanupExpired(ctx); err != nil {
		log.Printf("startup cleanup failed: %v", err)
	} else if removed > 0 {
		log.Printf("startup cleanup removed %d expired states", removed)
	}

	handler := chat.NewHandler(svc, chat.WithMention(cfg.MentionUserOnRender))

	runREPL(ctx, handler)
}

// runREPL is a minimal stand-in for the host chat framework: it reads one
// command per line from stdin and prints the reply.
func runREPL(ctx context.Context, handler *chat.Handler) {
	fmt.Println("pjsk-card demo. Commands: pjsk.draw, pjsk.调整, pjsk.状态, pjsk.人物列表. Ctrl-D exits.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev := &stdinEvent{message: line}
		if err := handler.Handle(ctx, ev, stdoutReplier{}); err != nil {
			log.Printf("handle failed: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin error: %v", err)
	}
}

// stdinEvent adapts a terminal line to the chat event contract.
type stdinEvent struct {
	message string
}

func (e *stdinEvent) Channel() string            { return "stdin" }
func (e *stdinEvent) SessionID() (string, bool)  { return "", false }
func (e *stdinEvent) SenderID() (string, bool)   { return os.Getenv("USER"), os.Getenv("USER") != "" }
func (e *stdinEvent) SenderName() (string, bool) { return "local", true }
func (e *stdinEvent) Message() string            { return e.message }

type stdoutReplier struct{}

func (stdoutReplier) Reply(text string, image []byte) error {
	fmt.Println(text)
	if len(image) > 0 {
		fmt.Printf("[image: %d bytes]\n", len(image))
	}
	return nil
}
