package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zlovtnik/docgov/cmd/ui/api"
	"github.com/zlovtnik/docgov/pkg/auth"
)

// fetchTimeout bounds every API call made by a command
const fetchTimeout = 10 * time.Second

const devTokenTTL = 8 * time.Hour

type loginMsg struct {
	token string
	user  string
	err   error
}

func (m Model) fetchQueue() tea.Cmd {
	client, level, bucket, expiring := m.client, m.level, m.bucket, m.expiring
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var (
			page *api.DocumentPage
			err  error
		)
		if expiring {
			page, err = client.ListExpiring(ctx)
		} else {
			page, err = client.ListDocuments(ctx, level, bucket, 1)
		}
		if err != nil {
			return errMsg{err}
		}
		return queueMsg{page: page}
	}
}

func (m Model) fetchDocument(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		doc, err := client.GetDocument(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return documentMsg{doc: doc}
	}
}

// run wraps a document action as a command
func run(verb string, call func(ctx context.Context) (*api.Document, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		doc, err := call(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("%s failed: %w", verb, err)}
		}
		return actionMsg{doc: doc, verb: verb}
	}
}

func (m Model) approve(id string, level int) tea.Cmd {
	client := m.client
	return run(fmt.Sprintf("Approved level %d", level), func(ctx context.Context) (*api.Document, error) {
		return client.Approve(ctx, id, level)
	})
}

func (m Model) reject(id string, level int, req api.RejectRequest) tea.Cmd {
	client := m.client
	return run(fmt.Sprintf("Rejected level %d", level), func(ctx context.Context) (*api.Document, error) {
		return client.Reject(ctx, id, level, req)
	})
}

func (m Model) resubmit(id string, req api.VersionRequest) tea.Cmd {
	client := m.client
	return run("Resubmitted", func(ctx context.Context) (*api.Document, error) {
		return client.Resubmit(ctx, id, req)
	})
}

func (m Model) archive(id string, req api.ArchiveRequest) tea.Cmd {
	client := m.client
	return run("Archived", func(ctx context.Context) (*api.Document, error) {
		return client.Archive(ctx, id, req)
	})
}

// devLogin signs a token locally with the server's shared secret
func (m Model) devLogin(user string, roles []string) tea.Cmd {
	secret := m.devSecret
	return func() tea.Msg {
		token, err := auth.IssueToken(user, roles, secret, devTokenTTL)
		if err != nil {
			return loginMsg{err: fmt.Errorf("dev login: %w", err)}
		}
		return loginMsg{token: token, user: user}
	}
}
