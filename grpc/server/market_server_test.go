package server_test

import (
	"campus-market/auth"
	"campus-market/domain"
	"campus-market/grpc/client"
	pb "campus-market/grpc/market"
	"campus-market/grpc/server"
	"campus-market/moderation"
	"campus-market/observability"
	"campus-market/repositories"
	"campus-market/runtime/workers"
	"campus-market/search"
	"campus-market/services"
	"campus-market/sink"
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const secret = "test-secret-that-is-long-enough-1234"

type harness struct {
	tokens *auth.TokenIssuer
	dialer func(context.Context, string) (net.Conn, error)
}

func newHarness(t *testing.T) harness {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := repositories.NewBadgerStore(db, log)

	writer, err := search.OpenWriter(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	index := search.NewListingIndex(writer, log)

	moderator, err := moderation.NewModerator([]string{"scammer"}, '*', log)
	require.NoError(t, err)
	monitoring, err := observability.NewMonitoringManager(log)
	require.NoError(t, err)
	dispatcher := workers.NewNotificationDispatcher(log, 100, time.Second, monitoring, sink.NewLogSink(log))

	tokens, err := auth.NewTokenIssuer(secret, time.Hour)
	require.NoError(t, err)

	marketServer := server.NewMarketServer(log, server.Services{
		Sales:         services.NewSaleService(log, store, index, dispatcher),
		Reviews:       services.NewReviewService(log, store, dispatcher),
		Conversations: services.NewConversationService(log, store, moderator, dispatcher, 2000),
		Listings:      services.NewListingService(log, store, index, dispatcher),
		Reports:       services.NewReportService(log, store),
	}, monitoring)

	listener := bufconn.Listen(1024 * 1024)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(auth.AuthInterceptor(tokens, server.MethodPolicy())))
	pb.RegisterMarketServiceServer(grpcServer, marketServer)
	go func() { _ = grpcServer.Serve(listener) }()
	t.Cleanup(grpcServer.Stop)

	return harness{
		tokens: tokens,
		dialer: func(ctx context.Context, _ string) (net.Conn, error) { return listener.DialContext(ctx) },
	}
}

func (h harness) client(t *testing.T, userID string, roles ...string) *client.MarketClient {
	t.Helper()
	token := ""
	if userID != "" {
		var err error
		token, err = h.tokens.GenerateToken(auth.TokenRequest{UserID: userID, Roles: roles})
		require.NoError(t, err)
	}
	c, err := client.NewMarketClient("passthrough:///bufnet", token, grpc.WithContextDialer(h.dialer))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "not a gRPC status: %v", err)
	require.Equal(t, code, st.Code(), st.Message())
}

func TestMarketServer_SaleHandshake(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	h := newHarness(t)
	seller, buyer, stranger := h.client(t, "S"), h.client(t, "B"), h.client(t, "X")

	// Given a furniture listing and a conversation opened by the buyer
	listing, err := seller.CreateListing(seller.WithAuth(ctx), &pb.CreateListingRequest{
		Title: "Oak desk", PriceCents: 4500, Category: domain.CategoryFurniture,
	})
	req.NoError(err)
	conversation, err := buyer.StartConversation(buyer.WithAuth(ctx), &pb.StartConversationRequest{ListingID: listing.Listing.ID})
	req.NoError(err)
	conversationID := &pb.ConversationRequest{ConversationID: conversation.Conversation.ID}

	// When a stranger or the seller tries to offer
	_, err = stranger.OfferSale(stranger.WithAuth(ctx), conversationID)
	requireCode(t, err, codes.PermissionDenied)
	_, err = seller.OfferSale(seller.WithAuth(ctx), conversationID)
	requireCode(t, err, codes.PermissionDenied)

	// When the buyer offers and the seller confirms
	offer, err := buyer.OfferSale(buyer.WithAuth(ctx), conversationID)
	req.NoError(err)
	req.Equal(domain.MessageSaleOffer, offer.Message.Type)
	_, err = buyer.OfferSale(buyer.WithAuth(ctx), conversationID)
	requireCode(t, err, codes.FailedPrecondition)

	confirmed, err := seller.ConfirmSale(seller.WithAuth(ctx), conversationID)
	req.NoError(err)
	req.Equal(domain.MessageSaleConfirmed, confirmed.Message.Type)

	// Then the listing is sold to the buyer and the buyer is prompted for a review
	got, err := stranger.GetListing(ctx, &pb.ListingRequest{ListingID: listing.Listing.ID})
	req.NoError(err)
	req.Equal(domain.ListingSold, got.Listing.Status)
	req.Equal("B", *got.Listing.SoldToBuyerID)

	view, err := buyer.GetSaleView(buyer.WithAuth(ctx), conversationID)
	req.NoError(err)
	req.Equal(domain.SaleConfirmed, view.View.State)
	req.True(view.View.ShowReviewPrompt)

	prompt, err := seller.GetReviewPrompt(seller.WithAuth(ctx), conversationID)
	req.NoError(err)
	req.False(prompt.ShowReviewPrompt)

	review, err := buyer.SubmitReview(buyer.WithAuth(ctx), &pb.SubmitReviewRequest{
		ConversationID: conversation.Conversation.ID, Rating: 5, Comment: "great",
	})
	req.NoError(err)
	req.Equal("S", review.Review.SellerID)
	_, err = buyer.SubmitReview(buyer.WithAuth(ctx), &pb.SubmitReviewRequest{ConversationID: conversation.Conversation.ID, Rating: 4})
	requireCode(t, err, codes.AlreadyExists)

	prompt, err = buyer.GetReviewPrompt(buyer.WithAuth(ctx), conversationID)
	req.NoError(err)
	req.False(prompt.ShowReviewPrompt)

	rating, err := stranger.GetSellerReviews(ctx, &pb.SellerReviewsRequest{SellerID: "S"})
	req.NoError(err)
	req.Equal(1, rating.Rating.Count)
	req.Equal(5.0, rating.Rating.Average)
}

func TestMarketServer_Authentication(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	anonymous, student, admin := h.client(t, ""), h.client(t, "B"), h.client(t, "A", auth.RoleAdmin)

	_, err := anonymous.Health(ctx, &pb.Empty{})
	require.NoError(t, err)

	_, err = anonymous.CreateListing(anonymous.WithAuth(ctx), &pb.CreateListingRequest{Title: "Desk", Category: domain.CategoryFurniture})
	requireCode(t, err, codes.Unauthenticated)

	_, err = student.ListReports(student.WithAuth(ctx), &pb.Empty{})
	requireCode(t, err, codes.PermissionDenied)

	reports, err := admin.ListReports(admin.WithAuth(ctx), &pb.Empty{})
	require.NoError(t, err)
	require.Empty(t, reports.Reports)

	_, err = student.GetConversation(student.WithAuth(ctx), &pb.ConversationRequest{ConversationID: "missing"})
	requireCode(t, err, codes.NotFound)
}

func TestMarketServer_MessagesAndReports(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	h := newHarness(t)
	seller, buyer, admin := h.client(t, "S"), h.client(t, "B"), h.client(t, "A", auth.RoleAdmin)

	listing, err := seller.CreateListing(seller.WithAuth(ctx), &pb.CreateListingRequest{
		Title: "Calculus textbook", Category: domain.CategoryTextbooks,
	})
	req.NoError(err)
	conversation, err := buyer.StartConversation(buyer.WithAuth(ctx), &pb.StartConversationRequest{ListingID: listing.Listing.ID})
	req.NoError(err)

	message, err := buyer.SendMessage(buyer.WithAuth(ctx), &pb.SendMessageRequest{
		ConversationID: conversation.Conversation.ID, Content: "you scammer",
	})
	req.NoError(err)
	req.Equal("you *******", message.Message.Content)

	messages, err := seller.ListMessages(seller.WithAuth(ctx), &pb.ConversationRequest{ConversationID: conversation.Conversation.ID})
	req.NoError(err)
	req.Len(messages.Messages, 1)

	found, err := buyer.SearchListings(ctx, &pb.SearchListingsRequest{Query: "calculus"})
	req.NoError(err)
	req.Len(found.Listings, 1)

	_, err = seller.Report(seller.WithAuth(ctx), &pb.ReportRequest{
		TargetType: domain.ReportConversation, TargetID: conversation.Conversation.ID, Reason: domain.ReasonHarassment,
	})
	req.NoError(err)
	reports, err := admin.ListReports(admin.WithAuth(ctx), &pb.Empty{})
	req.NoError(err)
	req.Len(reports.Reports, 1)
	req.Equal("S", reports.Reports[0].ReporterID)
}

func TestMarketServer_ListConversations_SellerConfirmsFromInbox(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	h := newHarness(t)
	seller, buyer, stranger := h.client(t, "S"), h.client(t, "B"), h.client(t, "X")

	// Given a buyer who opened a thread and offered, the seller never being told its id
	listing, err := seller.CreateListing(seller.WithAuth(ctx), &pb.CreateListingRequest{
		Title: "Bike lock", PriceCents: 1500, Category: domain.CategoryElectronics,
	})
	req.NoError(err)
	conversation, err := buyer.StartConversation(buyer.WithAuth(ctx), &pb.StartConversationRequest{ListingID: listing.Listing.ID})
	req.NoError(err)
	_, err = buyer.OfferSale(buyer.WithAuth(ctx), &pb.ConversationRequest{ConversationID: conversation.Conversation.ID})
	req.NoError(err)

	// When the seller lists their conversations
	inbox, err := seller.ListConversations(seller.WithAuth(ctx), &pb.Empty{})
	req.NoError(err)

	// Then the buyer's thread is found and the sale is confirmed through it
	req.Len(inbox.Conversations, 1)
	thread := inbox.Conversations[0]
	req.Equal(conversation.Conversation.ID, thread.ID)
	req.Equal("B", thread.BuyerID)
	confirmed, err := seller.ConfirmSale(seller.WithAuth(ctx), &pb.ConversationRequest{ConversationID: thread.ID})
	req.NoError(err)
	req.Equal(domain.MessageSaleConfirmed, confirmed.Message.Type)

	// And nobody else sees it
	other, err := stranger.ListConversations(stranger.WithAuth(ctx), &pb.Empty{})
	req.NoError(err)
	req.Empty(other.Conversations)
	_, err = h.client(t, "").ListConversations(ctx, &pb.Empty{})
	requireCode(t, err, codes.Unauthenticated)
}

func TestMarketServer_TakeDownListing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	h := newHarness(t)
	seller, student, admin := h.client(t, "S"), h.client(t, "B"), h.client(t, "A", auth.RoleAdmin)

	// Given a reported listing
	listing, err := seller.CreateListing(seller.WithAuth(ctx), &pb.CreateListingRequest{
		Title: "Replica sneakers", PriceCents: 9000, Category: domain.CategoryClothing,
	})
	req.NoError(err)
	_, err = student.Report(student.WithAuth(ctx), &pb.ReportRequest{
		TargetType: domain.ReportListing, TargetID: listing.Listing.ID, Reason: domain.ReasonScam,
	})
	req.NoError(err)
	takeDown := &pb.TakeDownListingRequest{ListingID: listing.Listing.ID, Reason: "counterfeit"}

	// When a student or the seller tries to take it down
	_, err = student.TakeDownListing(student.WithAuth(ctx), takeDown)
	requireCode(t, err, codes.PermissionDenied)
	_, err = seller.TakeDownListing(seller.WithAuth(ctx), takeDown)
	requireCode(t, err, codes.PermissionDenied)

	// Then only the admin succeeds
	archived, err := admin.TakeDownListing(admin.WithAuth(ctx), takeDown)
	req.NoError(err)
	req.Equal(domain.ListingArchived, archived.Listing.Status)

	got, err := student.GetListing(ctx, &pb.ListingRequest{ListingID: listing.Listing.ID})
	req.NoError(err)
	req.Equal(domain.ListingArchived, got.Listing.Status)
	found, err := student.SearchListings(ctx, &pb.SearchListingsRequest{Query: "sneakers"})
	req.NoError(err)
	req.Empty(found.Listings)

	// And a second takedown is a failed precondition
	_, err = admin.TakeDownListing(admin.WithAuth(ctx), takeDown)
	requireCode(t, err, codes.FailedPrecondition)
	_, err = admin.TakeDownListing(admin.WithAuth(ctx), &pb.TakeDownListingRequest{ListingID: "missing"})
	requireCode(t, err, codes.NotFound)
}
