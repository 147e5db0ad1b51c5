package a

import "context"

type Notifier interface {
	PostOrUpdate(ctx context.Context, threadIDs []string, payload string) ([]string, error)
}

type Reconciler interface {
	NotifyReviewed(ids []string)
}

func bad(ctx context.Context, ids []string, n Notifier, r Reconciler) {
	for _, id := range ids {
		n.PostOrUpdate(ctx, nil, id)   // want "PostOrUpdate called inside loop"
		r.NotifyReviewed([]string{id}) // want "NotifyReviewed called inside loop"
	}
}

func good(ctx context.Context, ids []string, n Notifier, r Reconciler) {
	tasks := make([]func(), 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, func() { n.PostOrUpdate(ctx, nil, id) })
	}
	r.NotifyReviewed(ids)
	_ = tasks
}
