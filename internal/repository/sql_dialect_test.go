package repository

import (
	"testing"
)

func TestBuildLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"name", " ", "sku"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != `name LIKE ? ESCAPE '\' OR sku LIKE ? ESCAPE '\'` {
		t.Fatalf("unexpected condition %s", condition)
	}
}

func TestBuildLikeConditionPostgres(t *testing.T) {
	condition, _ := buildLikeConditionByDialect("postgres", []string{"name"})
	if condition != `name ILIKE ? ESCAPE '\'` {
		t.Fatalf("postgres should use ILIKE, got %s", condition)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("unexpected escape result %s", got)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
