package permutation

var PValue = pValue
