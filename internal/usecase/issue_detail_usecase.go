package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"QualityRadar-App/internal/domain/helper"
	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
)

// 問題位置の周囲でOSM要素を探す範囲（度）
const osmSearchPadding = 0.001

type IssueDetailUseCase interface {
	// Detail は問題と、関連するWikidataエンティティ・OSM要素をまとめて返す
	// 外部APIの失敗は該当部分を空にして続行する
	Detail(ctx context.Context, id string) (*model.IssueDetail, error)
}

// issueDetailUseCaseImpl はIssueDetailUseCaseの実装
type issueDetailUseCaseImpl struct {
	issuesRepo  repository.IssuesRepository
	entityRepo  repository.EntityRepository
	featureRepo repository.FeatureRepository
}

// NewIssueDetailUseCase は新しいIssueDetailUseCaseインスタンスを作成
func NewIssueDetailUseCase(
	issuesRepo repository.IssuesRepository,
	entityRepo repository.EntityRepository,
	featureRepo repository.FeatureRepository,
) IssueDetailUseCase {
	return &issueDetailUseCaseImpl{
		issuesRepo:  issuesRepo,
		entityRepo:  entityRepo,
		featureRepo: featureRepo,
	}
}

func (u *issueDetailUseCaseImpl) Detail(ctx context.Context, id string) (*model.IssueDetail, error) {
	issue, err := u.issuesRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("問題の取得に失敗: %w", err)
	}

	detail := &model.IssueDetail{Issue: issue}
	var wg sync.WaitGroup

	// WikidataとOverpassは独立しているので並行で取得する
	if issue.HasWikidataID() && u.entityRepo != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entity, err := u.entityRepo.FetchEntity(ctx, issue.WikidataID)
			if err != nil {
				log.Printf("⚠️ Wikidataエンティティ取得失敗 (%s): %v", issue.WikidataID, err)
				return
			}
			detail.Wikidata = entity
		}()
	}

	var features []model.OSMEntity
	lookupOSM := issue.HasOSMID() && u.featureRepo != nil
	if lookupOSM && !helper.IsValidOSMID(issue.OSMID) {
		log.Printf("⚠️ OSM IDの形式が不正なため周辺要素の取得をスキップ (%s): %q", issue.ID, issue.OSMID)
		lookupOSM = false
	}
	if lookupOSM {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bounds := model.BoundsAround(issue.Coordinates, osmSearchPadding)
			result, err := u.featureRepo.QueryFeatures(ctx, bounds, nil)
			if err != nil {
				log.Printf("⚠️ OSM要素取得失敗 (%s): %v", issue.OSMID, err)
				return
			}
			features = result
		}()
	}

	wg.Wait()

	if detail.Wikidata != nil && detail.Wikidata.Coordinates != nil {
		distance := helper.HaversineDistance(issue.Coordinates, *detail.Wikidata.Coordinates)
		detail.WikidataDistanceKm = &distance
	}
	if len(features) > 0 {
		detail.NearbyFeatureCount = len(features)
		detail.OSM = pickFeature(issue, features)
	}

	log.Printf("🔍 問題詳細取得完了 (ID: %s, Wikidata: %t, OSM: %t, 周辺要素: %d件)",
		issue.ID, detail.Wikidata != nil, detail.OSM != nil, detail.NearbyFeatureCount)
	return detail, nil
}

// pickFeature はOSM IDが一致する要素を優先し、なければ問題位置に最も近い要素を返す
func pickFeature(issue *model.Issue, features []model.OSMEntity) *model.OSMEntity {
	for i := range features {
		if strings.EqualFold(features[i].ID, issue.OSMID) {
			return &features[i]
		}
	}

	sorted := make([]model.OSMEntity, len(features))
	copy(sorted, features)
	helper.SortByDistanceFromLocation(issue.Coordinates, sorted)
	if sorted[0].Coordinates == nil {
		return nil
	}
	return &sorted[0]
}
