package seed

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"points-server/internal/domain/account"
	"points-server/internal/domain/catalog"
)

// Entry 商品または景品の定義
type Entry struct {
	ID     string `yaml:"id"`
	ShopID string `yaml:"shop_id"`
	Points int64  `yaml:"points"`
}

// Seed アカウントとカタログの初期データ
type Seed struct {
	Clients  []string `yaml:"clients"`
	Shops    []string `yaml:"shops"`
	Products []Entry  `yaml:"products"`
	Prizes   []Entry  `yaml:"prizes"`
}

// Load YAMLファイルから初期データを読み込む
func Load(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode YAMLから初期データを読み込み、内容を検証する
func Decode(r io.Reader) (*Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate IDと所属店舗の整合性を検証
func (s *Seed) Validate() error {
	shops := make(map[string]bool, len(s.Shops))
	for _, id := range s.Shops {
		if !account.ValidID(id) {
			return fmt.Errorf("invalid shop id %q: %w", id, account.ErrInvalidAccountID)
		}
		shops[id] = true
	}
	for _, id := range s.Clients {
		if !account.ValidID(id) {
			return fmt.Errorf("invalid client id %q: %w", id, account.ErrInvalidAccountID)
		}
	}
	for _, p := range s.Products {
		if _, err := catalog.NewProduct(p.ID, p.ShopID, p.Points); err != nil {
			return fmt.Errorf("invalid product %q: %w", p.ID, err)
		}
		if !shops[p.ShopID] {
			return fmt.Errorf("product %q references unknown shop %q", p.ID, p.ShopID)
		}
	}
	for _, p := range s.Prizes {
		if _, err := catalog.NewPrize(p.ID, p.ShopID, p.Points); err != nil {
			return fmt.Errorf("invalid prize %q: %w", p.ID, err)
		}
		if !shops[p.ShopID] {
			return fmt.Errorf("prize %q references unknown shop %q", p.ID, p.ShopID)
		}
	}
	return nil
}
