// Package sangtacviet implements providers.Source for sangtacviet-style
// reading sites. It covers the three wire formats those sites expose: the
// delimited chapter index, the JSON chapter response with its numeric status
// table, and the inline dual-language markup carried in chapter bodies.
package sangtacviet
