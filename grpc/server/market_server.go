package server

import (
	"campus-market/auth"
	"campus-market/domain"
	"campus-market/errors"
	pb "campus-market/grpc/market"
	"campus-market/observability"
	"campus-market/services"
	"context"
	"log/slog"
)

// Services groups the application services exposed by the market API.
type Services struct {
	Sales         services.ISaleService
	Reviews       services.IReviewService
	Conversations services.IConversationService
	Listings      services.IListingService
	Reports       services.IReportService
}

// MarketServer adapts the gRPC calls to the services. The actor of every
// protected call is the user id injected by auth.AuthInterceptor, never a
// field of the request.
type MarketServer struct {
	log        *slog.Logger
	services   Services
	monitoring *observability.MonitoringManager
}

func NewMarketServer(log *slog.Logger, services Services, monitoring *observability.MonitoringManager) *MarketServer {
	return &MarketServer{log: log, services: services, monitoring: monitoring}
}

func actor(ctx context.Context) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", errors.MapToGRPCError(errors.ErrMissingIdentity)
	}
	return userID, nil
}

func (s *MarketServer) Health(_ context.Context, _ *pb.Empty) (*pb.HealthResponse, error) {
	stats := s.monitoring.GetLatest()
	return &pb.HealthResponse{
		Status:               stats.Status,
		PID:                  stats.PID,
		CPUPercent:           stats.CPUPercent,
		RSSBytes:             stats.RSSBytes,
		Goroutines:           stats.Goroutines,
		NotificationsSent:    stats.NotificationsSent,
		NotificationsFailed:  stats.NotificationsFailed,
		NotificationsDropped: stats.NotificationsDropped,
		QueueLength:          stats.QueueLength,
		QueueCapacity:        stats.QueueCapacity,
		SampledAt:            stats.SampledAt,
	}, nil
}

func (s *MarketServer) CreateListing(ctx context.Context, in *pb.CreateListingRequest) (*pb.ListingResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := s.services.Listings.CreateListing(ctx, domain.CreateListingCommand{
		SellerID:    userID,
		Title:       in.Title,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Category:    in.Category,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ListingResponse{Listing: listing}, nil
}

func (s *MarketServer) GetListing(ctx context.Context, in *pb.ListingRequest) (*pb.ListingResponse, error) {
	listing, err := s.services.Listings.GetListing(ctx, in.ListingID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ListingResponse{Listing: listing}, nil
}

func (s *MarketServer) ArchiveListing(ctx context.Context, in *pb.ListingRequest) (*pb.ListingResponse, error) {
	return s.listingAction(ctx, in, s.services.Listings.ArchiveListing)
}

func (s *MarketServer) RelistListing(ctx context.Context, in *pb.ListingRequest) (*pb.ListingResponse, error) {
	return s.listingAction(ctx, in, s.services.Listings.RelistListing)
}

// TakeDownListing is admin-only. The role is checked here as well as by the
// interceptor policy since the service trusts IsAdmin.
func (s *MarketServer) TakeDownListing(ctx context.Context, in *pb.TakeDownListingRequest) (*pb.ListingResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := s.services.Listings.TakeDownListing(ctx, domain.TakeDownListingCommand{
		ListingID: in.ListingID,
		ActorID:   userID,
		IsAdmin:   auth.HasRole(ctx, auth.RoleAdmin),
		Reason:    in.Reason,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ListingResponse{Listing: listing}, nil
}

func (s *MarketServer) listingAction(ctx context.Context, in *pb.ListingRequest,
	action func(context.Context, domain.ListingActionCommand) (domain.Listing, error)) (*pb.ListingResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := action(ctx, domain.ListingActionCommand{ListingID: in.ListingID, ActorID: userID})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ListingResponse{Listing: listing}, nil
}

func (s *MarketServer) SearchListings(ctx context.Context, in *pb.SearchListingsRequest) (*pb.ListingsResponse, error) {
	listings, err := s.services.Listings.SearchListings(ctx, domain.SearchListingsCommand{
		Query:    in.Query,
		Category: in.Category,
		Limit:    in.Limit,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ListingsResponse{Listings: listings}, nil
}

func (s *MarketServer) StartConversation(ctx context.Context, in *pb.StartConversationRequest) (*pb.ConversationResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	conversation, err := s.services.Conversations.StartConversation(ctx, domain.StartConversationCommand{
		BuyerID:   userID,
		ListingID: in.ListingID,
		SellerID:  in.SellerID,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ConversationResponse{Conversation: conversation}, nil
}

func (s *MarketServer) GetConversation(ctx context.Context, in *pb.ConversationRequest) (*pb.ConversationResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	conversation, err := s.services.Conversations.Conversation(ctx, in.ConversationID, userID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ConversationResponse{Conversation: conversation}, nil
}

func (s *MarketServer) ListConversations(ctx context.Context, _ *pb.Empty) (*pb.ConversationsResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	conversations, err := s.services.Conversations.ListConversations(ctx, userID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ConversationsResponse{Conversations: conversations}, nil
}

func (s *MarketServer) SendMessage(ctx context.Context, in *pb.SendMessageRequest) (*pb.MessageResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	message, err := s.services.Conversations.SendMessage(ctx, domain.SendMessageCommand{
		ConversationID: in.ConversationID,
		SenderID:       userID,
		Content:        in.Content,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.MessageResponse{Message: message}, nil
}

func (s *MarketServer) ListMessages(ctx context.Context, in *pb.ConversationRequest) (*pb.MessagesResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.services.Conversations.Messages(ctx, in.ConversationID, userID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.MessagesResponse{Messages: messages}, nil
}

func (s *MarketServer) OfferSale(ctx context.Context, in *pb.ConversationRequest) (*pb.MessageResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	message, err := s.services.Sales.OfferSale(ctx, domain.OfferSaleCommand{ConversationID: in.ConversationID, ActorID: userID})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.MessageResponse{Message: message}, nil
}

func (s *MarketServer) ConfirmSale(ctx context.Context, in *pb.ConversationRequest) (*pb.MessageResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	message, err := s.services.Sales.ConfirmSale(ctx, domain.ConfirmSaleCommand{ConversationID: in.ConversationID, ActorID: userID})
	if err != nil {
		s.log.Debug("Confirm sale rejected", "conversation_id", in.ConversationID, "error", err)
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.MessageResponse{Message: message}, nil
}

func (s *MarketServer) GetSaleView(ctx context.Context, in *pb.ConversationRequest) (*pb.SaleViewResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.services.Sales.SaleView(ctx, in.ConversationID, userID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.SaleViewResponse{View: view}, nil
}

func (s *MarketServer) GetReviewPrompt(ctx context.Context, in *pb.ConversationRequest) (*pb.ReviewPromptResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	show, err := s.services.Reviews.ReviewPrompt(ctx, in.ConversationID, userID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ReviewPromptResponse{ShowReviewPrompt: show}, nil
}

func (s *MarketServer) SubmitReview(ctx context.Context, in *pb.SubmitReviewRequest) (*pb.ReviewResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	review, err := s.services.Reviews.SubmitReview(ctx, domain.SubmitReviewCommand{
		ConversationID: in.ConversationID,
		ReviewerID:     userID,
		Rating:         in.Rating,
		Comment:        in.Comment,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ReviewResponse{Review: review}, nil
}

func (s *MarketServer) GetSellerReviews(ctx context.Context, in *pb.SellerReviewsRequest) (*pb.SellerReviewsResponse, error) {
	rating, err := s.services.Reviews.SellerReviews(ctx, in.SellerID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.SellerReviewsResponse{Rating: rating}, nil
}

func (s *MarketServer) Report(ctx context.Context, in *pb.ReportRequest) (*pb.ReportResponse, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.services.Reports.Report(ctx, domain.ReportCommand{
		ReporterID: userID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Reason:     in.Reason,
		Detail:     in.Detail,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ReportResponse{Report: report}, nil
}

func (s *MarketServer) ListReports(ctx context.Context, _ *pb.Empty) (*pb.ReportsResponse, error) {
	reports, err := s.services.Reports.ListReports(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.ReportsResponse{Reports: reports}, nil
}

// MethodPolicy is the authentication policy of the market API.
func MethodPolicy() auth.MethodPolicy {
	return auth.MethodPolicy{
		Public: map[string]struct{}{
			pb.FullMethod(pb.MethodHealth):           {},
			pb.FullMethod(pb.MethodGetListing):       {},
			pb.FullMethod(pb.MethodSearchListings):   {},
			pb.FullMethod(pb.MethodGetSellerReviews): {},
		},
		AdminOnly: map[string]struct{}{
			pb.FullMethod(pb.MethodListReports):     {},
			pb.FullMethod(pb.MethodTakeDownListing): {},
		},
	}
}
