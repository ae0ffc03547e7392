package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// maxConcurrent bounds the requests one batch may run at once.
const maxConcurrent = 4

// drive runs cmd outside a tea.Program. The commands of a batch run
// concurrently, then their messages are fed to update in batch order.
// Commands returned by update are not run, so notice timers never block.
func drive(ctx context.Context, cmd tea.Cmd, update func(tea.Msg) tea.Cmd) error {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		update(msg)
		return nil
	}

	msgs := make([]tea.Msg, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, c := range batch {
		if c == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			msgs[i] = c()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, m := range msgs {
		switch m := m.(type) {
		case nil:
		case tea.BatchMsg:
			for _, c := range m {
				if err := drive(ctx, c, update); err != nil {
					return err
				}
			}
		default:
			update(m)
		}
	}
	return nil
}
