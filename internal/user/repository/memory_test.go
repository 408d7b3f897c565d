package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"psychaid/backend/internal/user/domain"
)

func newStudent(id, email string, at time.Time) *domain.User {
	return &domain.User{ID: id, Email: email, PasswordHash: "h", Name: "S", Role: domain.RoleStudent, CreatedAt: at, UpdatedAt: at}
}

func TestMemory_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now().UTC()
	if err := repo.Create(ctx, newStudent("c1", "c@x.com", now)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, newStudent("c2", "c@x.com", now)); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v", err)
	}
	u, _ := repo.GetByEmail(ctx, "C@X.COM")
	if u == nil || u.ID != "c1" {
		t.Fatalf("GetByEmail = %+v", u)
	}
	u.Name = "mutated"
	again, _ := repo.GetByID(ctx, "c1")
	if again.Name == "mutated" {
		t.Error("repository must return copies")
	}
	missing, err := repo.GetByID(ctx, "nope")
	if missing != nil || err != nil {
		t.Errorf("GetByID(nope) = %v, %v", missing, err)
	}
}

func TestMemory_CreateWithLinkIsMutual(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now().UTC()
	_ = repo.Create(ctx, newStudent("c1", "c@x.com", now))

	parent := &domain.User{ID: "p1", Email: "p@x.com", PasswordHash: "h", Role: domain.RoleParent, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateWithLink(ctx, parent, "c1"); err != nil {
		t.Fatalf("CreateWithLink: %v", err)
	}
	p, _ := repo.GetByID(ctx, "p1")
	c, _ := repo.GetByID(ctx, "c1")
	if err := domain.CheckLinkage(p, c); err != nil {
		t.Fatalf("CheckLinkage: %v", err)
	}

	second := &domain.User{ID: "p2", Email: "p2@x.com", PasswordHash: "h", Role: domain.RoleParent, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateWithLink(ctx, second, "c1"); !errors.Is(err, ErrChildAlreadyLinked) {
		t.Fatalf("second parent err = %v, want ErrChildAlreadyLinked", err)
	}
	if u, _ := repo.GetByEmail(ctx, "p2@x.com"); u != nil {
		t.Fatal("rejected parent must not be persisted")
	}
	if err := repo.CreateWithLink(ctx, second, "p1"); !errors.Is(err, ErrChildNotStudent) {
		t.Fatalf("link to parent err = %v, want ErrChildNotStudent", err)
	}
	if err := repo.CreateWithLink(ctx, second, "ghost"); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("link to ghost err = %v, want ErrChildNotFound", err)
	}
}

func TestMemory_ConcurrentLinkSameChild(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now().UTC()
	_ = repo.Create(ctx, newStudent("c1", "c@x.com", now))

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := &domain.User{ID: string(rune('a' + i)), Email: string(rune('a'+i)) + "@x.com", PasswordHash: "h", Role: domain.RoleParent, CreatedAt: now, UpdatedAt: now}
			if err := repo.CreateWithLink(ctx, p, "c1"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if ok != 1 {
		t.Fatalf("%d parents linked the same student, want exactly 1", ok)
	}
}

func TestMemory_DeleteParentUnlinksChildren(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now().UTC()
	_ = repo.Create(ctx, newStudent("c1", "c@x.com", now))
	parent := &domain.User{ID: "p1", Email: "p@x.com", PasswordHash: "h", Role: domain.RoleParent, CreatedAt: now, UpdatedAt: now}
	_ = repo.CreateWithLink(ctx, parent, "c1")

	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	c, _ := repo.GetByID(ctx, "c1")
	if c.LinkedParentID != "" {
		t.Error("child should be unlinked after parent deletion")
	}
	if u, _ := repo.GetByEmail(ctx, "p@x.com"); u != nil {
		t.Error("deleted parent still resolvable by email")
	}
	kids, _ := repo.ListChildren(ctx, "")
	if len(kids) != 0 {
		t.Error("empty parent id must not match unlinked students")
	}
}

func TestMemory_UpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now().UTC()
	_ = repo.Create(ctx, newStudent("c1", "c@x.com", now))
	later := now.Add(time.Hour)
	if err := repo.UpdatePasswordHash(ctx, "c1", "h2", later); err != nil {
		t.Fatal(err)
	}
	u, _ := repo.GetByID(ctx, "c1")
	if u.PasswordHash != "h2" || !u.UpdatedAt.Equal(later) {
		t.Errorf("user = %+v", u)
	}
}
