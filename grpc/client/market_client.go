package client

import (
	pb "campus-market/grpc/market"
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// MarketClient is the market service client used by marketctl. It attaches
// the bearer token to every outgoing call.
type MarketClient struct {
	*pb.MarketServiceClient
	conn  *grpc.ClientConn
	token string
}

// NewMarketClient dials address without TLS. Extra options are appended,
// tests use them to plug a bufconn dialer.
func NewMarketClient(address, token string, opts ...grpc.DialOption) (*MarketClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}
	return &MarketClient{MarketServiceClient: pb.NewMarketServiceClient(conn), conn: conn, token: token}, nil
}

// WithAuth returns a context carrying the "authorization" metadata.
func (c *MarketClient) WithAuth(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func (c *MarketClient) Close() error {
	return c.conn.Close()
}
