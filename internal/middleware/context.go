package middleware

import "context"

type holderKey struct{}

type subjectHolder struct {
	subject string
}

func withSubjectHolder(ctx context.Context, h *subjectHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

func subjectHolderFrom(ctx context.Context) *subjectHolder {
	h, _ := ctx.Value(holderKey{}).(*subjectHolder)
	return h
}
