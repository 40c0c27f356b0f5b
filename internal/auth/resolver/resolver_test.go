package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hatake-api/internal/auth"
	"hatake-api/internal/session"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// fakeLookup maps tokens to users and counts calls. Tokens listed in errs
// fail with the mapped error.
type fakeLookup struct {
	users map[string]*auth.User
	errs  map[string]error
	calls int
	panic bool
}

func (f *fakeLookup) lookup(_ context.Context, token string) (*auth.User, error) {
	f.calls++
	if f.panic {
		panic("store exploded")
	}
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	return f.users[token], nil
}

type fakeBearer struct{ *fakeLookup }

func (f fakeBearer) ResolveBearerToken(ctx context.Context, token string) (*auth.User, error) {
	return f.lookup(ctx, token)
}

type fakeSessions struct{ *fakeLookup }

func (f fakeSessions) ResolveSessionToken(ctx context.Context, token string) (*auth.User, error) {
	return f.lookup(ctx, token)
}

var (
	u1 = &auth.User{UserID: "u1", Name: "Ash"}
	u2 = &auth.User{UserID: "u2", Name: "Misty"}
)

type fixture struct {
	bearer   *fakeLookup
	sessions *fakeLookup
	resolver *Resolver
}

func newFixture() *fixture {
	f := &fixture{
		bearer:   &fakeLookup{users: map[string]*auth.User{"abc123": u1}},
		sessions: &fakeLookup{users: map[string]*auth.User{"tok456": u2}},
	}
	f.resolver = New(fakeBearer{f.bearer}, fakeSessions{f.sessions})
	return f
}

func request(authorization, cookie string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	return req
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		authorization string
		cookie        string
		want          *auth.User
		wantChannel   Channel
		cookieCalls   int
	}{
		{name: "bearer only", authorization: "Bearer abc123", want: u1, wantChannel: ChannelBearer},
		{name: "bearer wins over valid cookie", authorization: "Bearer abc123", cookie: "tok456", want: u1, wantChannel: ChannelBearer},
		{name: "cookie only", cookie: "tok456", want: u2, wantChannel: ChannelCookie, cookieCalls: 1},
		{name: "invalid bearer falls back to cookie", authorization: "Bearer bad", cookie: "tok456", want: u2, wantChannel: ChannelCookie, cookieCalls: 1},
		{name: "invalid bearer without cookie", authorization: "Bearer bad", wantChannel: ChannelNone},
		{name: "invalid cookie", cookie: "expired", wantChannel: ChannelNone, cookieCalls: 1},
		{name: "no credentials", wantChannel: ChannelNone},
		{name: "non-bearer scheme ignored", authorization: "Basic abc123", cookie: "tok456", want: u2, wantChannel: ChannelCookie, cookieCalls: 1},
		{name: "prefix is case sensitive", authorization: "bearer abc123", wantChannel: ChannelNone},
		{name: "empty bearer token", authorization: "Bearer ", cookie: "tok456", want: u2, wantChannel: ChannelCookie, cookieCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			res := f.resolver.Resolve(request(tt.authorization, tt.cookie))

			require.Equal(t, tt.want != nil, res.Authenticated())
			require.Equal(t, tt.want, res.User())
			require.Equal(t, tt.wantChannel, res.Channel())
			require.Equal(t, tt.cookieCalls, f.sessions.calls)
		})
	}
}

func TestResolveSkipsLookupWithoutCredential(t *testing.T) {
	f := newFixture()

	res := f.resolver.Resolve(request("", ""))

	require.Equal(t, Unauthenticated, res)
	require.Zero(t, f.bearer.calls)
	require.Zero(t, f.sessions.calls)
}

func TestResolveAbsorbsLookupErrors(t *testing.T) {
	f := newFixture()
	f.bearer.errs = map[string]error{"abc123": errors.New("token malformed")}
	f.sessions.errs = map[string]error{"tok456": errors.New("dial tcp: connection refused")}

	res := f.resolver.Resolve(request("Bearer abc123", "tok456"))

	require.False(t, res.Authenticated())
	require.Nil(t, res.User())
}

func TestResolveBearerErrorFallsBackToCookie(t *testing.T) {
	f := newFixture()
	f.bearer.errs = map[string]error{"abc123": errors.New("signature invalid")}

	res := f.resolver.Resolve(request("Bearer abc123", "tok456"))

	require.Equal(t, u2, res.User())
}

func TestResolveAbsorbsPanics(t *testing.T) {
	f := newFixture()
	f.bearer.panic = true

	var res Result
	require.NotPanics(t, func() {
		res = f.resolver.Resolve(request("Bearer abc123", "tok456"))
	})
	require.Equal(t, u2, res.User())
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newFixture()

	first := f.resolver.Resolve(request("Bearer abc123", ""))
	second := f.resolver.Resolve(request("Bearer abc123", ""))

	require.Equal(t, first.User().UserID, second.User().UserID)
	require.Equal(t, 2, f.bearer.calls)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken(request("Bearer abc.def.ghi", ""))
	require.True(t, ok)
	require.Equal(t, "abc.def.ghi", token)

	_, ok = BearerToken(request("Token abc", ""))
	require.False(t, ok)
}

func TestResolveRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider.Meter("resolver-test"))
	require.NoError(t, err)

	f := newFixture()
	r := New(fakeBearer{f.bearer}, fakeSessions{f.sessions}, WithMetrics(m))

	r.Resolve(request("Bearer bad", "tok456"))
	r.Resolve(request("", ""))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		ch, _ := dp.Attributes.Value("channel")
		out, _ := dp.Attributes.Value("outcome")
		counts[ch.AsString()+"/"+out.AsString()] = dp.Value
	}
	require.Equal(t, map[string]int64{
		"bearer/rejected":      1,
		"cookie/authenticated": 1,
		"none/denied":          1,
	}, counts)
}
