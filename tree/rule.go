// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package tree

import "sync"

// RuleID identifies the grammar production
// that a rule node instantiates.
type RuleID uint16

const (
	UnknownRule RuleID = iota
	SelectStatement
	UnionStatement
	Selection
	ScalarExpCommalist
	DerivedColumn
	AsClause
	FromClause
	TableRefCommalist
	TableRef
	TableName
	WhereClause
	OptGroupByClause
	ColumnRefCommalist
	HavingClause
	OptOrderByClause
	OrderingSpecCommalist
	OrderingSpec
	Subquery
	SearchCondition
	BooleanTerm
	BooleanFactor
	BooleanTest
	BooleanPrimary
	TruthValue
	ComparisonPredicate
	ComparisonPredicatePart2
	Comparison
	BetweenPredicate
	BetweenPredicatePart2
	LikePredicate
	CharacterLikePredicatePart2
	OtherLikePredicatePart2
	OptEscape
	TestForNull
	NullPredicatePart2
	InPredicate
	InPredicatePart2
	InPredicateValue
	ValueExpCommalist
	AllOrAnyPredicate
	QuantifiedComparisonPredicatePart2
	AnyAllSome
	ExistenceTest
	UniqueTest
	SQLNot
	ColumnRef
	NumValueExp
	Term
	Factor
	Concatenation
	CharValueExp
	ValueExp
	ValueExpPrimary
	FctSpec
	FctArgCommalist
	GeneralSetFct
	SetFctType
	PositionExp
	ExtractExp
	ExtractField
	LengthExp
	CharValueFct
	CastSpec
	DataTypeRule
	Parameter
	SetFctSpec
	ODBCFctSpec
	Literal

	numRules
)

var rulenames = [numRules]string{
	UnknownRule:                        "unknown_rule",
	SelectStatement:                    "select_statement",
	UnionStatement:                     "union_statement",
	Selection:                          "selection",
	ScalarExpCommalist:                 "scalar_exp_commalist",
	DerivedColumn:                      "derived_column",
	AsClause:                           "as_clause",
	FromClause:                         "from_clause",
	TableRefCommalist:                  "table_ref_commalist",
	TableRef:                           "table_ref",
	TableName:                          "table_name",
	WhereClause:                        "where_clause",
	OptGroupByClause:                   "opt_group_by_clause",
	ColumnRefCommalist:                 "column_ref_commalist",
	HavingClause:                       "having_clause",
	OptOrderByClause:                   "opt_order_by_clause",
	OrderingSpecCommalist:              "ordering_spec_commalist",
	OrderingSpec:                       "ordering_spec",
	Subquery:                           "subquery",
	SearchCondition:                    "search_condition",
	BooleanTerm:                        "boolean_term",
	BooleanFactor:                      "boolean_factor",
	BooleanTest:                        "boolean_test",
	BooleanPrimary:                     "boolean_primary",
	TruthValue:                         "truth_value",
	ComparisonPredicate:                "comparison_predicate",
	ComparisonPredicatePart2:           "comparison_predicate_part_2",
	Comparison:                         "comparison",
	BetweenPredicate:                   "between_predicate",
	BetweenPredicatePart2:              "between_predicate_part_2",
	LikePredicate:                      "like_predicate",
	CharacterLikePredicatePart2:        "character_like_predicate_part_2",
	OtherLikePredicatePart2:            "other_like_predicate_part_2",
	OptEscape:                          "opt_escape",
	TestForNull:                        "test_for_null",
	NullPredicatePart2:                 "null_predicate_part_2",
	InPredicate:                        "in_predicate",
	InPredicatePart2:                   "in_predicate_part_2",
	InPredicateValue:                   "in_predicate_value",
	ValueExpCommalist:                  "value_exp_commalist",
	AllOrAnyPredicate:                  "all_or_any_predicate",
	QuantifiedComparisonPredicatePart2: "quantified_comparison_predicate_part_2",
	AnyAllSome:                         "any_all_some",
	ExistenceTest:                      "existence_test",
	UniqueTest:                         "unique_test",
	SQLNot:                             "sql_not",
	ColumnRef:                          "column_ref",
	NumValueExp:                        "num_value_exp",
	Term:                               "term",
	Factor:                             "factor",
	Concatenation:                      "concatenation",
	CharValueExp:                       "char_value_exp",
	ValueExp:                           "value_exp",
	ValueExpPrimary:                    "value_exp_primary",
	FctSpec:                            "fct_spec",
	FctArgCommalist:                    "fct_arg_commalist",
	GeneralSetFct:                      "general_set_fct",
	SetFctType:                         "set_fct_type",
	PositionExp:                        "position_exp",
	ExtractExp:                         "extract_exp",
	ExtractField:                       "extract_field",
	LengthExp:                          "length_exp",
	CharValueFct:                       "char_value_fct",
	CastSpec:                           "cast_spec",
	DataTypeRule:                       "data_type",
	Parameter:                          "parameter",
	SetFctSpec:                         "set_fct_spec",
	ODBCFctSpec:                        "odbc_fct_spec",
	Literal:                            "literal",
}

// String returns the grammar name of the rule,
// or "unknown_rule" for ids outside the table.
func (r RuleID) String() string {
	if r >= numRules {
		return rulenames[UnknownRule]
	}
	return rulenames[r]
}

var (
	ruleOnce   sync.Once
	ruleByName map[string]RuleID
)

// RuleByName maps a grammar rule name to its id.
// Unknown names map to UnknownRule.
func RuleByName(name string) RuleID {
	ruleOnce.Do(func() {
		ruleByName = make(map[string]RuleID, numRules)
		for i := RuleID(0); i < numRules; i++ {
			ruleByName[rulenames[i]] = i
		}
	})
	if r, ok := ruleByName[name]; ok {
		return r
	}
	return UnknownRule
}
