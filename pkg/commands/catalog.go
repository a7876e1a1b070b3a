package commands

import "github.com/leapstack-labs/funcsql/pkg/core"

// Defaults returns the built-in commands by name. Each call returns a new
// map, so callers may modify it.
func Defaults() map[string]core.Factory {
	return map[string]core.Factory{
		"join":      joinFactory(ImplicitJoin),
		"innerjoin": joinFactory(InnerJoin),
		"leftjoin":  joinFactory(LeftJoin),
		"rightjoin": joinFactory(RightJoin),
		"fulljoin":  joinFactory(FullJoin),

		"filter":     filterFactory(true),
		"notfilter":  filterFactory(false),
		"filterdate": func(ctx core.Context) core.Command { return NewFilterDate(ctx) },
		"like":       func(ctx core.Context) core.Command { return NewLike(ctx) },
		"in":         func(ctx core.Context) core.Command { return NewIn(ctx) },

		"or":  logicFactory("OR"),
		"and": logicFactory("AND"),

		"print":    func(ctx core.Context) core.Command { return NewPrint(ctx) },
		"distinct": func(ctx core.Context) core.Command { return NewDistinct(ctx) },
		"group":    func(ctx core.Context) core.Command { return NewGroup(ctx) },
		"sum":      aggregateFactory("SUM"),
		"min":      aggregateFactory("MIN"),
		"max":      aggregateFactory("MAX"),
		"avg":      aggregateFactory("AVG"),
		"count":    aggregateFactory("COUNT"),

		"asc":  orderFactory("ASC"),
		"desc": orderFactory("DESC"),

		"ref":      func(ctx core.Context) core.Command { return NewRef(ctx) },
		"newtable": func(ctx core.Context) core.Command { return NewNewTable(ctx) },
	}
}

// Usage returns a one-line synopsis of each built-in command.
func Usage() map[string]string {
	return map[string]string{
		"join":      "join(table [, driveColumn [, joinColumn]] [, join(...)...]) implicit join on a relation",
		"innerjoin": "innerjoin(table [, driveColumn [, joinColumn]]) INNER JOIN",
		"leftjoin":  "leftjoin(table [, driveColumn [, joinColumn]]) LEFT JOIN",
		"rightjoin": "rightjoin(table [, driveColumn [, joinColumn]]) RIGHT JOIN",
		"fulljoin":  "fulljoin(table [, driveColumn [, joinColumn]]) FULL JOIN",

		"filter":     "filter(column, value...) column = value, or IN for several values",
		"notfilter":  "notfilter(column, value...) column <> value, or NOT IN",
		"filterdate": "filterdate(column, date [, operator|days]) date comparison or range",
		"like":       "like(column, pattern) column LIKE pattern",
		"in":         "in(column, (statement)) column IN subquery",

		"or":  "or(filter...) joins its filters with OR",
		"and": "and(filter...) joins its filters with AND",

		"print":    "print(column...) selects columns",
		"distinct": "distinct([column...]) SELECT DISTINCT",
		"group":    "group(column...) GROUP BY, selecting the columns",
		"sum":      "sum(column [, groupColumn...]) SUM, grouped by the extra columns",
		"min":      "min(column [, groupColumn...]) MIN",
		"max":      "max(column [, groupColumn...]) MAX",
		"avg":      "avg(column [, groupColumn...]) AVG",
		"count":    "count(column [, groupColumn...]) COUNT",

		"asc":  "asc(column...) ORDER BY ascending",
		"desc": "desc(column...) ORDER BY descending",

		"ref":      "ref(table[.column], n) alias of the nth instance of table",
		"newtable": "newtable(table) joins another instance of table",
	}
}
