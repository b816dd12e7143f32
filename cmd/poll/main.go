package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clientportal/internal/poller"
)

type terminal struct{}

func (terminal) Toast(n poller.Notification) {
	fmt.Printf("\n[new] #%d %s: %s\n", n.ID, n.Title, n.Message)
}

func (terminal) Sound() {
	fmt.Print("\a")
}

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", envOr("PORTAL_URL", "http://localhost:8080"), "portal base URL")
	cookie := flag.String("cookie", envOr("SESSION_COOKIE", "portal_session"), "session cookie name")
	token := flag.String("token", os.Getenv("SESSION_TOKEN"), "session token")
	interval := flag.Duration("interval", poller.DefaultInterval, "poll interval")
	flag.Parse()

	if *token == "" {
		log.Fatal("a session token is required (-token or SESSION_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := poller.NewClient(*baseURL, *cookie, *token)
	pager := poller.NewPager(client, 10)
	p := poller.New(client, poller.NewTracker(), terminal{},
		poller.WithInterval(*interval),
		poller.OnUnread(func(n int) { slog.Debug("unread", "count", n) }),
	)

	go func() {
		if err := p.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("poller stopped", "error", err)
		}
	}()

	fmt.Println("commands: o (open), m (more), c (close), r ID (mark read), a (mark all read), q (quit)")
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := handle(ctx, strings.Fields(line), client, pager, p); quit {
				return
			}
		}
	}
}

func handle(ctx context.Context, args []string, client *poller.Client, pager *poller.Pager, p *poller.Poller) bool {
	if len(args) == 0 {
		fmt.Printf("unread: %d\n", p.UnreadCount())
		return false
	}

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch args[0] {
	case "o":
		if err := pager.Open(reqCtx); err != nil {
			fmt.Println("error:", err)
			return false
		}
		render(pager)
	case "m":
		loaded, err := pager.LoadMore(reqCtx)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		if loaded {
			render(pager)
		} else {
			fmt.Println("nothing more to load")
		}
	case "c":
		pager.Close()
	case "r":
		if len(args) < 2 {
			fmt.Println("usage: r ID")
			return false
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Println("invalid id")
			return false
		}
		if err := client.MarkRead(reqCtx, id); err != nil {
			fmt.Println("error:", err)
			return false
		}
		pager.MarkLocalRead(id)
	case "a":
		if err := client.MarkAllRead(reqCtx); err != nil {
			fmt.Println("error:", err)
			return false
		}
		if pager.IsOpen() {
			_ = pager.Open(reqCtx)
		}
	case "q":
		return true
	default:
		fmt.Println("unknown command")
	}
	return false
}

func render(pager *poller.Pager) {
	for _, n := range pager.Items() {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Printf("%s #%-5d %s  %s  (%s)\n", mark, n.ID, n.CreatedAt.Local().Format("Jan 2 15:04"), n.Title, n.Message)
	}
	if pager.HasMore() {
		fmt.Println("  ... m for more")
	}
	fmt.Printf("unread: %d\n", pager.UnreadCount())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
