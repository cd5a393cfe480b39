package access

import (
	"context"
	"testing"

	"github.com/matryer/is"
)

func TestContext(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()
	is.Equal(FromContext(ctx), Anonymous)
	is.True(!FromContext(ctx).Can(LogActivities))

	ctx = WithContext(ctx, Advisor)
	is.Equal(FromContext(ctx), Advisor)
	is.True(FromContext(ctx).Can(ViewAnalytics))
}
