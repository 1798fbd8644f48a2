package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/model"
	"github.com/shestoi/catalog-browser/services/browser/internal/pagination"
	"github.com/shestoi/catalog-browser/services/browser/internal/service"
	"github.com/shestoi/catalog-browser/services/browser/internal/store"
)

// Browser точки входа, которые дёргает терминал (реализует service.BrowserService)
type Browser interface {
	OnSearchInput(text string)
	OnVisibleItem(index int)
	OnCartTap(index int)
	OnCartAdjust(index, delta int)
	Retry() bool
	OpenDetail(ctx context.Context, index int) (*service.Detail, error)
	SubscribeWithSnapshot() (store.State, *store.Subscription)
	Snapshot() store.State
	Cursor() pagination.Cursor
}

// Renderer форматирование списка и карточки (реализует render.Renderer)
type Renderer interface {
	RenderList(state store.State, hasMore bool) (string, error)
	RenderRow(index int, item model.Item) string
	RenderDetail(item model.ItemDetail) (string, error)
}

const help = `commands:
  search [text]   type into the search field (debounced)
  show <i>        report item i as visible (loads the next page at the end of the list)
  more            show the last item
  add <i>         add item i to the cart
  + <i> / - <i>   change the quantity of item i
  open <i>        open item details
  list            print the whole list
  retry           retry after a load error
  help, quit
detail commands: add, +, -, back`

// Terminal строчный фронтенд: читает команды из in, печатает изменения состояния в out
type Terminal struct {
	logger   *zap.Logger
	browser  Browser
	renderer Renderer

	outMu sync.Mutex
	out   io.Writer
	in    io.Reader

	detail    *service.Detail
	detailSub *store.Subscription
	wg        sync.WaitGroup
}

// New создаёт Terminal
func New(logger *zap.Logger, browser Browser, renderer Renderer, in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		logger:   logger,
		browser:  browser,
		renderer: renderer,
		in:       in,
		out:      out,
	}
}

// Run обрабатывает команды до quit, EOF или отмены ctx
func (t *Terminal) Run(ctx context.Context) error {
	state, sub := t.browser.SubscribeWithSnapshot()
	t.printList(state)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.watch(sub.C())
	}()
	defer func() {
		t.closeDetail()
		sub.Close()
		t.wg.Wait()
	}()

	lines := make(chan string)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case line := <-lines:
			if quit := t.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func (t *Terminal) handle(ctx context.Context, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	if t.detail != nil {
		switch cmd {
		case "add":
			t.detail.AddToCart()
			return false
		case "+", "-":
			t.detail.Adjust(delta(cmd))
			return false
		case "back":
			t.closeDetail()
			t.printList(t.browser.Snapshot())
			return false
		}
	}

	switch cmd {
	case "":
	case "quit", "exit":
		return true
	case "help":
		t.println(help)
	case "search":
		t.browser.OnSearchInput(arg)
	case "list":
		t.printList(t.browser.Snapshot())
	case "more":
		t.browser.OnVisibleItem(len(t.browser.Snapshot().Items) - 1)
	case "retry":
		if !t.browser.Retry() {
			t.println("nothing to retry")
		}
	case "show", "add", "+", "-", "open":
		index, err := strconv.Atoi(arg)
		if err != nil {
			t.println("expected an item index: " + cmd + " <i>")
			return false
		}
		t.indexed(ctx, cmd, index)
	default:
		t.println("unknown command, type help")
	}
	return false
}

func (t *Terminal) indexed(ctx context.Context, cmd string, index int) {
	switch cmd {
	case "show":
		t.browser.OnVisibleItem(index)
	case "add":
		t.browser.OnCartTap(index)
	case "+", "-":
		t.browser.OnCartAdjust(index, delta(cmd))
	case "open":
		d, err := t.browser.OpenDetail(ctx, index)
		if err != nil {
			t.println("cannot open item: " + err.Error())
			return
		}
		t.closeDetail()
		t.detail = d
		t.detailSub = d.Subscribe()
		t.printDetail(d)

		sub := t.detailSub
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			for range sub.C() {
				t.printDetail(d)
			}
		}()
	}
}

func (t *Terminal) closeDetail() {
	if t.detail == nil {
		return
	}
	t.detailSub.Close()
	t.detail.Close()
	t.detail, t.detailSub = nil, nil
}

// watch печатает изменения списка по мере поступления
func (t *Terminal) watch(changes <-chan store.Change) {
	for c := range changes {
		switch c.Kind {
		case store.ChangeReset:
			if c.Query == "" {
				t.println("-- all products --")
			} else {
				t.println(fmt.Sprintf("-- search: %q --", c.Query))
			}
		case store.ChangeLoading:
			if c.Loading {
				t.println("loading...")
			}
		case store.ChangeAppended:
			var b strings.Builder
			for i, it := range c.Items {
				if i > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(t.renderer.RenderRow(c.From+i, it))
			}
			t.println(b.String())
		case store.ChangeItemUpdated:
			if c.Reload == model.ReloadFull {
				t.printList(t.browser.Snapshot())
			} else {
				t.println(t.renderer.RenderRow(c.Index, c.Item))
			}
		case store.ChangeError:
			t.println("! " + c.Err.Error() + " (type retry)")
		case store.ChangeNavigate:
			t.logger.Debug("navigation", zap.Bool("active", c.Active), zap.Int("index", c.Index))
		}
	}
}

func (t *Terminal) printList(state store.State) {
	out, err := t.renderer.RenderList(state, t.browser.Cursor().HasMore)
	if err != nil {
		t.logger.Error("failed to render list", zap.Error(err))
		return
	}
	t.println(out)
}

func (t *Terminal) printDetail(d *service.Detail) {
	out, err := t.renderer.RenderDetail(d.Item())
	if err != nil {
		t.logger.Error("failed to render detail", zap.Error(err))
		return
	}
	t.println(fmt.Sprintf("-- detail of list item [%d] --\n%s", d.Index(), out))
}

func (t *Terminal) println(s string) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	_, _ = fmt.Fprintln(t.out, s)
}

func delta(cmd string) int {
	if cmd == "-" {
		return -1
	}
	return 1
}
