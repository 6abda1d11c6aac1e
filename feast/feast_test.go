package feast

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/feast-dev/feast/sdk/go/protos/feast/types"
	"github.com/rushteam/animerec/core"
)

type fakeClient struct {
	values   map[string]map[string]any
	err      error
	requests []*GetOnlineFeaturesRequest
}

func (f *fakeClient) GetOnlineFeatures(_ context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := &GetOnlineFeaturesResponse{}
	for _, row := range req.EntityRows {
		id, _ := row["anime_id"].(string)
		resp.FeatureVectors = append(resp.FeatureVectors, FeatureVector{
			Values:    f.values[id],
			EntityRow: row,
		})
	}
	return resp, nil
}

func (f *fakeClient) Close() error { return nil }

func TestRatingEnricher(t *testing.T) {
	client := &fakeClient{values: map[string]map[string]any{
		"1": {"anime_stats:rating_score": 9.1, "anime_stats:rating_count": float64(1200)},
		"2": {"anime_stats:rating_score": math.NaN()},
	}}
	e := &RatingEnricher{
		Client:       client,
		ScoreFeature: "anime_stats:rating_score",
		CountFeature: "anime_stats:rating_count",
		BatchSize:    2,
	}
	items := []core.Item{
		{ID: "1", Title: "A", RatingScore: core.Float64(7)},
		{ID: "2", Title: "B", RatingScore: core.Float64(6.5)},
		{ID: "3", Title: "C"},
	}

	got, err := e.Enrich(context.Background(), items)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if len(client.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(client.requests))
	}
	if *got[0].RatingScore != 9.1 || *got[0].RatingCount != 1200 {
		t.Errorf("item A = %v/%v, want 9.1/1200", *got[0].RatingScore, got[0].RatingCount)
	}
	if *got[1].RatingScore != 6.5 {
		t.Errorf("item B score = %v, want unchanged 6.5", *got[1].RatingScore)
	}
	if got[2].RatingScore != nil {
		t.Errorf("item C score = %v, want nil", *got[2].RatingScore)
	}
	if *items[0].RatingScore != 7 {
		t.Error("Enrich mutated its input")
	}
}

func TestRatingEnricherError(t *testing.T) {
	e := &RatingEnricher{
		Client:       &fakeClient{err: errors.New("connection refused")},
		ScoreFeature: "anime_stats:rating_score",
	}
	if _, err := e.Enrich(context.Background(), []core.Item{{ID: "1", Title: "A"}}); err == nil {
		t.Fatal("Enrich() error = nil, want error")
	}
}

func TestRatingEnricherNoFeatures(t *testing.T) {
	client := &fakeClient{}
	e := &RatingEnricher{Client: client}
	got, err := e.Enrich(context.Background(), []core.Item{{Title: "A"}})
	if err != nil || len(got) != 1 {
		t.Fatalf("Enrich() = %v, %v", got, err)
	}
	if len(client.requests) != 0 {
		t.Errorf("requests = %d, want 0", len(client.requests))
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		host     string
		port     int
	}{
		{"localhost:6565", "localhost", 6565},
		{"grpc://feast.internal:7000", "feast.internal", 7000},
		{"feast.internal", "feast.internal", 0},
		{"https://feast.example.com:443", "feast.example.com", 443},
	}
	for _, tt := range tests {
		host, port := parseEndpoint(tt.endpoint)
		if host != tt.host || port != tt.port {
			t.Errorf("parseEndpoint(%q) = %q, %d; want %q, %d", tt.endpoint, host, port, tt.host, tt.port)
		}
	}
}

func TestFromSDKValue(t *testing.T) {
	tests := []struct {
		name string
		in   *types.Value
		want any
	}{
		{"nil", nil, nil},
		{"unset", &types.Value{}, nil},
		{"double", &types.Value{Val: &types.Value_DoubleVal{DoubleVal: 8.5}}, 8.5},
		{"float", &types.Value{Val: &types.Value_FloatVal{FloatVal: 2.5}}, 2.5},
		{"int64", &types.Value{Val: &types.Value_Int64Val{Int64Val: 42}}, float64(42)},
		{"string", &types.Value{Val: &types.Value_StringVal{StringVal: "x"}}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromSDKValue(tt.in); got != tt.want {
				t.Errorf("fromSDKValue() = %v, want %v", got, tt.want)
			}
		})
	}
}
