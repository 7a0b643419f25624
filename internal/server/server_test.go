package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/config"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
)

type stubService struct {
	createCommunityFn    func(ctx context.Context, name string) (*domain.Community, error)
	joinCommunityFn      func(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error)
	createNodeProposalFn func(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error)
	createEdgeProposalFn func(ctx context.Context, communityID, proposerID uuid.UUID, payload domain.EdgePayload) (*domain.Proposal, error)
	getProposalFn        func(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error)
	listProposalsFn      func(ctx context.Context, communityID uuid.UUID) ([]domain.Proposal, error)
	castVoteFn           func(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error)
	recomputeCreditsFn   func(ctx context.Context) (*domain.RecomputeReport, error)
	getNodeFn            func(ctx context.Context, nodeID string) (*domain.GraphNode, error)
	getEdgeFn            func(ctx context.Context, edgeID string) (*domain.GraphEdge, error)
}

func (s *stubService) CreateCommunity(ctx context.Context, name string) (*domain.Community, error) {
	return s.createCommunityFn(ctx, name)
}

func (s *stubService) JoinCommunity(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error) {
	return s.joinCommunityFn(ctx, userID, communityID)
}

func (s *stubService) CreateNodeProposal(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error) {
	return s.createNodeProposalFn(ctx, communityID, proposerID, kind, payload, targetGraphID)
}

func (s *stubService) CreateEdgeProposal(ctx context.Context, communityID, proposerID uuid.UUID, payload domain.EdgePayload) (*domain.Proposal, error) {
	return s.createEdgeProposalFn(ctx, communityID, proposerID, payload)
}

func (s *stubService) GetProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
	return s.getProposalFn(ctx, proposalID)
}

func (s *stubService) ListProposals(ctx context.Context, communityID uuid.UUID) ([]domain.Proposal, error) {
	return s.listProposalsFn(ctx, communityID)
}

func (s *stubService) CastVote(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error) {
	return s.castVoteFn(ctx, proposalID, userID, direction)
}

func (s *stubService) RecomputeCredits(ctx context.Context) (*domain.RecomputeReport, error) {
	return s.recomputeCreditsFn(ctx)
}

func (s *stubService) GetNode(ctx context.Context, nodeID string) (*domain.GraphNode, error) {
	return s.getNodeFn(ctx, nodeID)
}

func (s *stubService) GetEdge(ctx context.Context, edgeID string) (*domain.GraphEdge, error) {
	return s.getEdgeFn(ctx, edgeID)
}

type stubChecker struct {
	err error
}

func (s *stubChecker) Ping(ctx context.Context) error   { return s.err }
func (s *stubChecker) Verify(ctx context.Context) error { return s.err }

func newTestServer(t *testing.T, app domain.ConsensusService) *Server {
	t.Helper()
	cfg := &config.Config{Port: "0"}
	return NewServer(cfg, app, &stubChecker{}, &stubChecker{}, nil, clockwork.NewFakeClock())
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestLiveness(t *testing.T) {
	srv := newTestServer(t, &stubService{})

	rec := doRequest(t, srv, http.MethodGet, "/health/live", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
}

func TestReadiness(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		srv := newTestServer(t, &stubService{})

		rec := doRequest(t, srv, http.MethodGet, "/health/ready", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("postgres down", func(t *testing.T) {
		srv := newTestServer(t, &stubService{})
		srv.postgres = &stubChecker{err: errors.New("connection refused")}

		rec := doRequest(t, srv, http.MethodGet, "/health/ready", "")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unhealthy", body["status"])
		assert.Equal(t, "postgres", body["failed_check"])
	})

	t.Run("neo4j down", func(t *testing.T) {
		srv := newTestServer(t, &stubService{})
		srv.graph = &stubChecker{err: errors.New("routing table empty")}

		rec := doRequest(t, srv, http.MethodGet, "/health/ready", "")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "neo4j", body["failed_check"])
	})

	t.Run("redis skipped when not configured", func(t *testing.T) {
		srv := newTestServer(t, &stubService{})
		require.Nil(t, srv.redis)

		rec := doRequest(t, srv, http.MethodGet, "/health/ready", "")

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubService{})

	rec := doRequest(t, srv, http.MethodGet, "/version", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "version")
}

func TestCreateCommunity(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		communityID := uuid.New()
		app := &stubService{
			createCommunityFn: func(ctx context.Context, name string) (*domain.Community, error) {
				assert.Equal(t, "golang", name)
				return &domain.Community{ID: communityID, Name: name, CreatedAt: time.Now()}, nil
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, "/communities", `{"name":"golang"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body communityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, communityID.String(), body.ID)
		assert.Equal(t, "golang", body.Name)
	})

	t.Run("empty name maps to 400", func(t *testing.T) {
		app := &stubService{
			createCommunityFn: func(ctx context.Context, name string) (*domain.Community, error) {
				return nil, domain.ErrInvalidCommunityName
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, "/communities", `{"name":""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestJoinCommunity(t *testing.T) {
	t.Run("joined", func(t *testing.T) {
		userID := uuid.New()
		communityID := uuid.New()
		app := &stubService{
			joinCommunityFn: func(ctx context.Context, gotUser, gotCommunity uuid.UUID) (*domain.Membership, error) {
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, communityID, gotCommunity)
				return &domain.Membership{UserID: gotUser, CommunityID: gotCommunity, Reputation: domain.InitialReputation}, nil
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, "/communities/"+communityID.String()+"/join", `{"userId":"`+userID.String()+`"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body membershipResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body.UserID)
		assert.Equal(t, int64(domain.InitialReputation), body.Reputation)
	})

	t.Run("invalid community id", func(t *testing.T) {
		srv := newTestServer(t, &stubService{})

		rec := doRequest(t, srv, http.MethodPost, "/communities/not-a-uuid/join", `{"userId":"`+uuid.NewString()+`"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown community maps to 404", func(t *testing.T) {
		app := &stubService{
			joinCommunityFn: func(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error) {
				return nil, domain.ErrCommunityNotFound
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, "/communities/"+uuid.NewString()+"/join", `{"userId":"`+uuid.NewString()+`"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateNodeProposal(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		communityID := uuid.New()
		proposerID := uuid.New()
		proposalID := uuid.New()
		app := &stubService{
			createNodeProposalFn: func(ctx context.Context, gotCommunity, gotProposer uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error) {
				assert.Equal(t, communityID, gotCommunity)
				assert.Equal(t, domain.KindCreate, kind)
				assert.Equal(t, []string{"Concept"}, payload.Labels)
				return &domain.Proposal{
					ID:          proposalID,
					CommunityID: gotCommunity,
					ProposerID:  gotProposer,
					Target:      domain.TargetNode,
					Kind:        kind,
					Status:      domain.StatusPending,
					Node:        &payload,
				}, nil
			},
		}
		srv := newTestServer(t, app)

		body := `{"communityId":"` + communityID.String() + `","proposerId":"` + proposerID.String() + `","kind":"CREATE","labels":["Concept"],"properties":{"name":"Goroutine"}}`
		rec := doRequest(t, srv, http.MethodPost, "/proposals/node", body)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp proposalResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, proposalID.String(), resp.ID)
		assert.Equal(t, domain.StatusPending, resp.Status)
		require.NotNil(t, resp.Node)
		assert.Equal(t, []string{"Concept"}, resp.Node.Labels)
	})

	t.Run("non-member maps to 403", func(t *testing.T) {
		app := &stubService{
			createNodeProposalFn: func(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error) {
				return nil, domain.ErrNotAMember
			},
		}
		srv := newTestServer(t, app)

		body := `{"communityId":"` + uuid.NewString() + `","proposerId":"` + uuid.NewString() + `","kind":"CREATE","labels":["Concept"]}`
		rec := doRequest(t, srv, http.MethodPost, "/proposals/node", body)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed payload maps to 400", func(t *testing.T) {
		app := &stubService{
			createNodeProposalFn: func(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error) {
				return nil, domain.ErrInvalidProposal
			},
		}
		srv := newTestServer(t, app)

		body := `{"communityId":"` + uuid.NewString() + `","proposerId":"` + uuid.NewString() + `","kind":"CREATE"}`
		rec := doRequest(t, srv, http.MethodPost, "/proposals/node", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateEdgeProposal(t *testing.T) {
	communityID := uuid.New()
	proposerID := uuid.New()
	app := &stubService{
		createEdgeProposalFn: func(ctx context.Context, gotCommunity, gotProposer uuid.UUID, payload domain.EdgePayload) (*domain.Proposal, error) {
			assert.Equal(t, "DEPENDS_ON", payload.Type)
			assert.Equal(t, "4:node:1", payload.SourceGraphID)
			assert.Equal(t, "4:node:2", payload.TargetGraphID)
			return &domain.Proposal{
				ID:          uuid.New(),
				CommunityID: gotCommunity,
				ProposerID:  gotProposer,
				Target:      domain.TargetEdge,
				Kind:        domain.KindCreate,
				Status:      domain.StatusPending,
				Edge:        &payload,
			}, nil
		},
	}
	srv := newTestServer(t, app)

	body := `{"communityId":"` + communityID.String() + `","proposerId":"` + proposerID.String() + `","type":"DEPENDS_ON","sourceGraphId":"4:node:1","targetGraphId":"4:node:2"}`
	rec := doRequest(t, srv, http.MethodPost, "/proposals/edge", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp proposalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.TargetEdge, resp.Target)
	require.NotNil(t, resp.Edge)
	assert.Equal(t, "DEPENDS_ON", resp.Edge.Type)
}

func TestGetProposal(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		proposalID := uuid.New()
		app := &stubService{
			getProposalFn: func(ctx context.Context, gotID uuid.UUID) (*domain.Proposal, error) {
				assert.Equal(t, proposalID, gotID)
				return &domain.Proposal{ID: gotID, Status: domain.StatusApproved, LinkedGraphID: "4:node:7"}, nil
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodGet, "/proposals/"+proposalID.String(), "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp proposalResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.StatusApproved, resp.Status)
		assert.Equal(t, "4:node:7", resp.LinkedGraphID)
	})

	t.Run("not found", func(t *testing.T) {
		app := &stubService{
			getProposalFn: func(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
				return nil, domain.ErrProposalNotFound
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodGet, "/proposals/"+uuid.NewString(), "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		srv := newTestServer(t, &stubService{})

		rec := doRequest(t, srv, http.MethodGet, "/proposals/abc", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListProposals(t *testing.T) {
	communityID := uuid.New()
	app := &stubService{
		listProposalsFn: func(ctx context.Context, gotID uuid.UUID) ([]domain.Proposal, error) {
			assert.Equal(t, communityID, gotID)
			return []domain.Proposal{
				{ID: uuid.New(), Status: domain.StatusPending},
				{ID: uuid.New(), Status: domain.StatusRejected},
			}, nil
		},
	}
	srv := newTestServer(t, app)

	rec := doRequest(t, srv, http.MethodGet, "/communities/"+communityID.String()+"/proposals", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []proposalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, domain.StatusPending, resp[0].Status)
	assert.Equal(t, domain.StatusRejected, resp[1].Status)
}

func TestCastVote(t *testing.T) {
	proposalID := uuid.New()
	userID := uuid.New()
	votePath := "/proposals/" + proposalID.String() + "/vote"
	voteBody := `{"userId":"` + userID.String() + `","direction":1}`

	t.Run("accepted", func(t *testing.T) {
		app := &stubService{
			castVoteFn: func(ctx context.Context, gotProposal, gotUser uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error) {
				assert.Equal(t, proposalID, gotProposal)
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, domain.DirectionUp, direction)
				return &domain.VoteResult{
					Proposal:   &domain.Proposal{ID: gotProposal, Status: domain.StatusPending, Upvotes: 1},
					Membership: &domain.Membership{UserID: gotUser, Credits: 4},
				}, nil
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, votePath, voteBody)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp voteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Proposal.Upvotes)
		assert.Equal(t, int64(4), resp.Membership.Credits)
	})

	t.Run("invalid direction", func(t *testing.T) {
		srv := newTestServer(t, &stubService{})

		rec := doRequest(t, srv, http.MethodPost, votePath, `{"userId":"`+userID.String()+`","direction":3}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("insufficient credits maps to 409", func(t *testing.T) {
		app := &stubService{
			castVoteFn: func(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error) {
				return nil, domain.ErrInsufficientCredits
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, votePath, voteBody)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("direction flip maps to 409", func(t *testing.T) {
		app := &stubService{
			castVoteFn: func(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error) {
				return nil, domain.ErrDirectionChange
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, votePath, voteBody)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("debounced maps to 429", func(t *testing.T) {
		app := &stubService{
			castVoteFn: func(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error) {
				return nil, domain.ErrVoteDebounced
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, votePath, voteBody)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("decided proposal maps to 409", func(t *testing.T) {
		app := &stubService{
			castVoteFn: func(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error) {
				return nil, domain.ErrProposalNotPending
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodPost, votePath, voteBody)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetNode(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		app := &stubService{
			getNodeFn: func(ctx context.Context, nodeID string) (*domain.GraphNode, error) {
				assert.Equal(t, "4:node:9", nodeID)
				return &domain.GraphNode{ID: nodeID, Labels: []string{"Concept", "Searchable"}, Properties: map[string]any{"name": "Channel"}}, nil
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodGet, "/nodes/4:node:9", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var node domain.GraphNode
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &node))
		assert.Equal(t, "4:node:9", node.ID)
		assert.Contains(t, node.Labels, "Searchable")
	})

	t.Run("missing maps to 404", func(t *testing.T) {
		app := &stubService{
			getNodeFn: func(ctx context.Context, nodeID string) (*domain.GraphNode, error) {
				return nil, domain.ErrGraphEntityNotFound
			},
		}
		srv := newTestServer(t, app)

		rec := doRequest(t, srv, http.MethodGet, "/nodes/4:node:404", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetEdge(t *testing.T) {
	app := &stubService{
		getEdgeFn: func(ctx context.Context, edgeID string) (*domain.GraphEdge, error) {
			return &domain.GraphEdge{ID: edgeID, Type: "DEPENDS_ON", SourceID: "4:node:1", TargetID: "4:node:2"}, nil
		},
	}
	srv := newTestServer(t, app)

	rec := doRequest(t, srv, http.MethodGet, "/edges/5:rel:3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var edge domain.GraphEdge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &edge))
	assert.Equal(t, "DEPENDS_ON", edge.Type)
}

func TestRecomputeCredits(t *testing.T) {
	app := &stubService{
		recomputeCreditsFn: func(ctx context.Context) (*domain.RecomputeReport, error) {
			return &domain.RecomputeReport{UpdatedMemberships: 3, UpdatedCommunities: 1}, nil
		},
	}
	srv := newTestServer(t, app)

	rec := doRequest(t, srv, http.MethodPost, "/credits/recompute", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.RecomputeReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.UpdatedMemberships)
	assert.Equal(t, 1, report.UpdatedCommunities)
}
