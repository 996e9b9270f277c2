package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// luidForIssue builds the LUID a github-tasks source uses to address an
// issue: its repository-scoped number, stable for the issue's lifetime.
func luidForIssue(number int) domain.LUID {
	return domain.LUID(strconv.Itoa(number))
}

// issueNumber parses the issue number back out of a LUID.
func issueNumber(luid domain.LUID) (int, error) {
	n, err := strconv.Atoi(luid.String())
	if err != nil {
		return 0, fmt.Errorf("github: invalid issue LUID %q: %w", luid, err)
	}
	return n, nil
}

// itemFromIssue renders a GitHub issue as the plain-text Item a github-tasks
// source hands to the Protocol Engine: title as the first line, body as the
// rest, matching how a task-list peer would expect a single note's worth of
// content. The revision is the issue's UpdatedAt timestamp, which GitHub
// bumps on every edit.
func itemFromIssue(sourceID string, issue *gh.Issue) *domain.Item {
	content := issue.GetTitle()
	if body := issue.GetBody(); body != "" {
		content += "\n\n" + body
	}
	return &domain.Item{
		SourceID:    sourceID,
		LUID:        luidForIssue(issue.GetNumber()),
		ContentType: domain.ContentTypeText,
		Content:     []byte(content),
		Revision:    domain.Revision(issue.GetUpdatedAt().Format(time.RFC3339Nano)),
	}
}

// splitTitleBody reverses itemFromIssue's encoding: the first line is the
// title, everything after a blank line is the body.
func splitTitleBody(content []byte) (title, body string) {
	s := string(content)
	title, rest, found := strings.Cut(s, "\n\n")
	if !found {
		return s, ""
	}
	return title, rest
}

// listIssuesSince lists non-pull-request issues updated at or after since,
// oldest first, across all pages. A zero since lists every issue (a slow
// sync enumeration).
func listIssuesSince(ctx context.Context, client *Client, owner, repo string, since time.Time) ([]*gh.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	if !since.IsZero() {
		opts.Since = since
	}

	all, err := client.ListIssues(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	issues := make([]*gh.Issue, 0, len(all))
	for _, issue := range all {
		if issue.IsPullRequest() {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// getIssue fetches a single issue by number.
func getIssue(ctx context.Context, client *Client, owner, repo string, number int) (*gh.Issue, error) {
	if err := client.ensureClient(ctx); err != nil {
		return nil, err
	}
	if err := client.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	issue, resp, err := client.gh.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, client.wrapError(err, "get issue")
	}
	client.updateRateLimitFromResponse(resp)
	return issue, nil
}

// createIssue opens a new issue from an Item's encoded title/body.
func createIssue(ctx context.Context, client *Client, owner, repo string, item domain.Item) (*gh.Issue, error) {
	if err := client.ensureClient(ctx); err != nil {
		return nil, err
	}
	title, body := splitTitleBody(item.Content)
	req := &gh.IssueRequest{Title: &title, Body: &body}

	if err := client.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	issue, resp, err := client.gh.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		return nil, client.wrapError(err, "create issue")
	}
	client.updateRateLimitFromResponse(resp)
	return issue, nil
}

// updateIssue edits an existing issue's title/body from an Item.
func updateIssue(ctx context.Context, client *Client, owner, repo string, number int, item domain.Item) (*gh.Issue, error) {
	if err := client.ensureClient(ctx); err != nil {
		return nil, err
	}
	title, body := splitTitleBody(item.Content)
	req := &gh.IssueRequest{Title: &title, Body: &body}

	if err := client.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	issue, resp, err := client.gh.Issues.Edit(ctx, owner, repo, number, req)
	if err != nil {
		return nil, client.wrapError(err, "update issue")
	}
	client.updateRateLimitFromResponse(resp)
	return issue, nil
}

// closeIssue closes an issue. GitHub's API has no hard-delete for issues;
// closing is the closest available analogue to a Deleted item, matching
// how github-tasks represents deletions both ways.
func closeIssue(ctx context.Context, client *Client, owner, repo string, number int) error {
	if err := client.ensureClient(ctx); err != nil {
		return err
	}
	closed := "closed"
	req := &gh.IssueRequest{State: &closed}

	if err := client.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	_, resp, err := client.gh.Issues.Edit(ctx, owner, repo, number, req)
	if err != nil {
		return client.wrapError(err, "close issue")
	}
	client.updateRateLimitFromResponse(resp)
	return nil
}
