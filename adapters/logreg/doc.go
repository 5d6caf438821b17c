// Package logreg trains multi-class linear classifiers as a set of one-vs-rest
// logistic regression machines.
//
// Each machine k scores a row x as sigmoid(b_k + w_k·x) and is fit by minimizing
// the mean cross-entropy, plus an optional L2 penalty on w_k (never on b_k), with
// gonum's L-BFGS. Prediction picks the machine with the highest score; ties go to
// the lowest class label.
//
// Class labels are entry positions in the training sample.Group, which is the
// same convention Labeler uses to build ground truth.
package logreg
